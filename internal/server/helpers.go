package server

import (
	"errors"
	"net/url"

	"boostly/internal/middleware"
	"boostly/internal/models"
	"boostly/internal/token"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// pathName returns a route parameter with percent-escapes decoded, so names
// containing spaces or non-ASCII characters match what was stored.
// On a malformed escape it writes a 400 JSON response and returns errResponseWritten.
func pathName(c *fiber.Ctx, param string) (string, error) {
	name, err := url.PathUnescape(c.Params(param))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return "", errResponseWritten
	}
	return name, nil
}

// requirePrincipal returns the principal stored by the auth gate or writes a 401.
func requirePrincipal(c *fiber.Ctx) (token.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		_ = models.RespondWithAppError(c, models.NewUnauthorizedError("Unauthorized: please login"))
		return token.Principal{}, errResponseWritten
	}
	return p, nil
}

// requireCompanyID returns the company id stored by the auth gate or writes a 401.
func requireCompanyID(c *fiber.Ctx) (uint, error) {
	id, ok := middleware.CompanyIDFrom(c)
	if !ok {
		_ = models.RespondWithAppError(c, models.NewUnauthorizedError("Company account required"))
		return 0, errResponseWritten
	}
	return id, nil
}
