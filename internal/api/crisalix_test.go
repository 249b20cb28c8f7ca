package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crisalixContext(cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/crisalix/patients", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCrisalixAccessTokenFromCookie(t *testing.T) {
	value := url.QueryEscape(`{"access_token":"tok-123","refresh_token":"r"}`)
	c, _ := crisalixContext(&http.Cookie{Name: "crisalix_tokens", Value: value})

	token, ok := crisalixAccessToken(c)
	require.True(t, ok)
	assert.Equal(t, "tok-123", token)
}

func TestCrisalixAccessTokenMissingCookie(t *testing.T) {
	c, _ := crisalixContext(nil)

	_, ok := crisalixAccessToken(c)
	assert.False(t, ok)
}

func TestCrisalixAccessTokenMalformedCookie(t *testing.T) {
	c, _ := crisalixContext(&http.Cookie{Name: "crisalix_tokens", Value: "not-json"})

	_, ok := crisalixAccessToken(c)
	assert.False(t, ok)
}

func TestCreateCrisalixPatientUnauthenticated(t *testing.T) {
	s := &Server{Logger: noopLogger{}}
	c, rec := crisalixContext(nil)

	require.NoError(t, s.CreateCrisalixPatient(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Not authenticated with Crisalix"}`, rec.Body.String())
}
