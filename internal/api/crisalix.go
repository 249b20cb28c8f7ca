package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/sharyyoru/medical-crm/internal/services"
)

// crisalixTokens mirrors the JSON payload of the `crisalix_tokens` cookie set
// by the imaging-partner login flow.
type crisalixTokens struct {
	AccessToken string `json:"access_token"`
}

// CreateCrisalixPatient forwards a multipart patient-creation form to the
// Crisalix API using the access token from the session cookie.
// (POST /api/v1/crisalix/patients)
func (s *Server) CreateCrisalixPatient(c echo.Context) error {
	token, ok := crisalixAccessToken(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Not authenticated with Crisalix")
	}

	req := c.Request()
	payload, err := s.Crisalix.CreatePatient(req.Context(), token, req.Header.Get("Content-Type"), req.Body)
	if err != nil {
		var upstream *services.CrisalixUpstreamError
		if errors.As(err, &upstream) {
			return c.JSON(http.StatusBadGateway, map[string]any{
				"error":    "Crisalix request failed",
				"status":   upstream.StatusCode,
				"upstream": upstream.Body,
			})
		}
		return s.serviceError(c, err)
	}
	return c.JSONBlob(http.StatusOK, payload)
}

// crisalixAccessToken extracts the access token from the cookie. The cookie
// value is URL-encoded JSON.
func crisalixAccessToken(c echo.Context) (string, bool) {
	cookie, err := c.Cookie("crisalix_tokens")
	if err != nil {
		return "", false
	}
	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", false
	}
	var tokens crisalixTokens
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil || tokens.AccessToken == "" {
		return "", false
	}
	return tokens.AccessToken, true
}
