package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boostly/internal/models"
	"boostly/internal/token"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

var gateNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type companyResolverStub struct {
	ids map[uint]uint
	err error
}

func (s companyResolverStub) CompanyIDFor(_ context.Context, p token.Principal) (uint, error) {
	if s.err != nil {
		return 0, s.err
	}
	id, ok := s.ids[p.AccountID]
	if !ok {
		return 0, models.NewNotFoundError("Company for account", p.AccountID)
	}
	return id, nil
}

func newTestGate(resolver CompanyResolver) (*AuthGate, *token.Service) {
	tokens := token.NewService(testSecret, 3*time.Hour, "boostly-api", "boostly-client")
	gate := NewAuthGate(tokens, resolver).WithClock(func() time.Time { return gateNow })
	return gate, tokens
}

func issue(t *testing.T, tokens *token.Service, p token.Principal, at time.Time) string {
	t.Helper()
	raw, _, err := tokens.Issue(p, at)
	require.NoError(t, err)
	return raw
}

func TestAuthGate_Authenticate(t *testing.T) {
	gate, tokens := newTestGate(nil)
	p := token.Principal{AccountID: 4, Name: "Globex", Email: "globex@example.com"}

	got, err := gate.Authenticate(issue(t, tokens, p, gateNow.Add(-time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = gate.Authenticate(issue(t, tokens, p, gateNow.Add(-4*time.Hour)))
	assert.ErrorIs(t, err, token.ErrTokenExpired)
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))

	_, err = gate.Authenticate("garbage")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))
}

func TestAuthGate_RequireSession(t *testing.T) {
	gate, tokens := newTestGate(nil)
	p := token.Principal{AccountID: 9, Name: "Initech", Email: "initech@example.com"}

	app := fiber.New()
	app.Get("/profile", gate.RequireSession(), func(c *fiber.Ctx) error {
		principal, ok := PrincipalFrom(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.JSON(principal)
	})

	valid := issue(t, tokens, p, gateNow.Add(-time.Minute))
	expired := issue(t, tokens, p, gateNow.Add(-3*time.Hour))

	tests := []struct {
		name           string
		cookie         string
		authHeader     string
		expectedStatus int
	}{
		{"cookie token", valid, "", http.StatusOK},
		{"bearer token", "", "Bearer " + valid, http.StatusOK},
		{"missing token", "", "", http.StatusUnauthorized},
		{"basic auth header", "", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"malformed token", "malformed.token.here", "", http.StatusUnauthorized},
		{"expired at exactly three hours", expired, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body token.Principal
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, p, body)
			} else {
				var body models.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, models.CodeUnauthorized, body.Code)
			}
		})
	}
}

func TestAuthGate_RequireCompany(t *testing.T) {
	resolver := companyResolverStub{ids: map[uint]uint{1: 100}}
	gate, tokens := newTestGate(resolver)

	app := fiber.New()
	app.Get("/company", gate.RequireSession(), gate.RequireCompany(), func(c *fiber.Ctx) error {
		id, ok := CompanyIDFrom(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.JSON(fiber.Map{"company_id": id})
	})

	tests := []struct {
		name           string
		principal      token.Principal
		expectedStatus int
		expectedID     float64
	}{
		{"company principal", token.Principal{AccountID: 1, Name: "Acme", Email: "acme@example.com"}, http.StatusOK, 100},
		{"plain account", token.Principal{AccountID: 2, Name: "Bob", Email: "bob@example.com"}, http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/company", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: issue(t, tokens, tt.principal, gateNow)})

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.expectedID, body["company_id"])
			}
		})
	}
}

func TestAuthGate_RequireCompanyStoreFailure(t *testing.T) {
	gate, tokens := newTestGate(companyResolverStub{err: models.NewInternalError(assert.AnError)})

	app := fiber.New()
	app.Get("/company", gate.RequireSession(), gate.RequireCompany(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/company", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, token.Principal{AccountID: 1, Email: "a@example.com"}, gateNow))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
