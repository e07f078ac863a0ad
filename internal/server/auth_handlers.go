package server

import (
	"time"

	"boostly/internal/middleware"
	"boostly/internal/models"
	"boostly/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /auth/register
// @Summary Register an account
// @Description Create an account. When company is true a company of the same name is created with it.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string,company=bool} true "Registration request"
// @Success 201 {object} object{message=string,user=models.Account}
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Company  bool   `json:"company"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	account, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Name:      req.Username,
		Email:     req.Email,
		Password:  req.Password,
		AsCompany: req.Company,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registered successfully",
		"user":    account,
	})
}

// Login handles POST /auth/login
// @Summary Log in
// @Description Exchange credentials for a session token. The token is also set as an HttpOnly cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login request"
// @Success 200 {object} object{message=string,token=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	session, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})

	return c.JSON(fiber.Map{
		"message": "Logged in successfully",
		"token":   session.Token,
	})
}

// Logout handles POST /user/logout
// @Summary Log out
// @Description Clear the session cookie
// @Tags user
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /user/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
