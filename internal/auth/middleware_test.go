package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func invokeMiddleware(t *testing.T, header string) (uuid.UUID, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got uuid.UUID
	handler := Middleware(func(c echo.Context) error {
		id, err := GetUserIDFromContext(c)
		if err != nil {
			t.Fatalf("user id missing after auth: %v", err)
		}
		got = id
		return nil
	})
	return got, handler(c)
}

func TestMiddlewareRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := generateToken(userID)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}

	got, err := invokeMiddleware(t, "Bearer "+token)
	if err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if got != userID {
		t.Fatalf("context user id = %s, want %s", got, userID)
	}
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc123"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := invokeMiddleware(t, tc.header)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected HTTP error, got %v", err)
			}
			if httpErr.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", httpErr.Code)
			}
		})
	}
}
