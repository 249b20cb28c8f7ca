package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testContext() Context {
	return Context{
		"patient": {"first_name": "Anna", "last_name": "Keller"},
		"deal":    {"title": "Rhinoplasty consult", "pipeline": "Geneva"},
	}
}

func TestRender(t *testing.T) {
	got := Render("Hi {{patient.first_name}}, re: {{deal.title}}", testContext())
	assert.Equal(t, "Hi Anna, re: Rhinoplasty consult", got)
}

func TestRenderWhitespaceInsideToken(t *testing.T) {
	got := Render("Hi {{ patient.first_name }}", testContext())
	assert.Equal(t, "Hi Anna", got)
}

func TestRenderMissingPathIsEmpty(t *testing.T) {
	assert.Equal(t, "-", Render("{{patient.middle_name}}-{{invoice.total}}", testContext()))
}

func TestRenderNoTokens(t *testing.T) {
	assert.Equal(t, "plain text", Render("plain text", testContext()))
}

func TestRenderIdempotent(t *testing.T) {
	ctx := testContext()
	tmpl := "Hi {{patient.first_name}}\n\nDeal: {{deal.title}}\nPipeline: {{deal.pipeline}}"
	once := Render(tmpl, ctx)
	assert.Equal(t, once, Render(once, ctx))
}

func TestRenderMalformedTokens(t *testing.T) {
	// A token with no field path renders empty; an empty token is not a
	// token at all and passes through.
	assert.Equal(t, " {{}}", Render("{{patient}} {{}}", testContext()))
}
