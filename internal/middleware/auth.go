// Package middleware provides authentication, logging, tracing and rate limiting for the HTTP API.
package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"boostly/internal/models"
	"boostly/internal/observability"
	"boostly/internal/token"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "token"

const (
	principalLocal = "principal"
	companyIDLocal = "companyID"
	accountIDLocal = "accountID"
)

// CompanyResolver maps an authenticated principal to the company it operates.
type CompanyResolver interface {
	CompanyIDFor(ctx context.Context, p token.Principal) (uint, error)
}

// AuthGate verifies session tokens and decorates the request with the resulting identity.
// It never stores identity anywhere except the request being served.
type AuthGate struct {
	tokens    *token.Service
	companies CompanyResolver
	now       func() time.Time
}

// NewAuthGate creates an AuthGate. companies may be nil when no company routes are mounted.
func NewAuthGate(tokens *token.Service, companies CompanyResolver) *AuthGate {
	return &AuthGate{tokens: tokens, companies: companies, now: time.Now}
}

// WithClock returns a copy of the gate that reads the time from now.
func (g *AuthGate) WithClock(now func() time.Time) *AuthGate {
	clone := *g
	clone.now = now
	return &clone
}

// Authenticate resolves a raw token into a principal. Failures are UNAUTHORIZED
// AppErrors wrapping token.ErrInvalidToken or token.ErrTokenExpired.
func (g *AuthGate) Authenticate(raw string) (token.Principal, error) {
	p, err := g.tokens.Verify(raw, g.now())
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			observability.TokenVerifications.WithLabelValues("expired").Inc()
			return token.Principal{}, models.NewUnauthorizedError("Session expired, please login again", err)
		}
		observability.TokenVerifications.WithLabelValues("invalid").Inc()
		return token.Principal{}, models.NewUnauthorizedError("Unauthorized: please login", err)
	}
	observability.TokenVerifications.WithLabelValues("ok").Inc()
	return p, nil
}

// RequireSession rejects requests without a valid session token and stores the principal in locals.
func (g *AuthGate) RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := g.Authenticate(ExtractToken(c))
		if err != nil {
			return models.RespondWithAppError(c, err)
		}

		c.Locals(principalLocal, p)
		c.Locals(accountIDLocal, p.AccountID)
		c.SetUserContext(context.WithValue(c.UserContext(), AccountIDKey, p.AccountID))
		return c.Next()
	}
}

// RequireCompany must run after RequireSession. It resolves the principal's company
// and stores its id in locals; principals without a company are rejected.
func (g *AuthGate) RequireCompany() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return models.RespondWithAppError(c, models.NewUnauthorizedError("Unauthorized: please login"))
		}
		if g.companies == nil {
			return models.RespondWithAppError(c, models.NewInternalError(errors.New("company resolver not configured")))
		}

		companyID, err := g.companies.CompanyIDFor(c.UserContext(), p)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return models.RespondWithAppError(c, models.NewUnauthorizedError("Company account required", err))
			}
			return models.RespondWithAppError(c, err)
		}

		c.Locals(companyIDLocal, companyID)
		return c.Next()
	}
}

// ExtractToken reads the session token from the cookie, falling back to a Bearer header.
func ExtractToken(c *fiber.Ctx) string {
	if raw := c.Cookies(SessionCookie); raw != "" {
		return raw
	}
	authHeader := c.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// PrincipalFrom returns the principal stored by RequireSession.
func PrincipalFrom(c *fiber.Ctx) (token.Principal, bool) {
	p, ok := c.Locals(principalLocal).(token.Principal)
	return p, ok
}

// CompanyIDFrom returns the company id stored by RequireCompany.
func CompanyIDFrom(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(companyIDLocal).(uint)
	return id, ok && id != 0
}

// SetPrincipal stores p as the request principal. Used by handlers under test.
func SetPrincipal(c *fiber.Ctx, p token.Principal) {
	c.Locals(principalLocal, p)
	c.Locals(accountIDLocal, p.AccountID)
}

// SetCompanyID stores the resolved company id. Used by handlers under test.
func SetCompanyID(c *fiber.Ctx, id uint) {
	c.Locals(companyIDLocal, id)
}
