package server

import (
	"boostly/internal/models"
	"boostly/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /user/profile
// @Summary Current account
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{user=models.Account}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /user/profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return nil
	}

	account, err := s.accountService.Profile(c.UserContext(), p)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"user": account})
}

// UpdateAccount handles POST /user/update/:id
// @Summary Update an account
// @Tags user
// @Accept json
// @Produce json
// @Param id path int true "Account ID"
// @Param request body object{name=string,email=string,password=string} true "New account fields"
// @Success 200 {object} object{message=string,user=models.Account}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /user/update/{id} [post]
func (s *Server) UpdateAccount(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	account, err := s.accountService.Update(c.UserContext(), service.UpdateAccountInput{
		ID:       id,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Account updated",
		"user":    account,
	})
}

// DeleteAccount handles DELETE /user/delete/:id
// @Summary Delete an account
// @Tags user
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} object{message=string,id=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /user/delete/{id} [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.accountService.Delete(c.UserContext(), id); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Account deleted",
		"id":      id,
	})
}

// SearchAccounts handles POST /user/search
// @Summary Search accounts by name
// @Description Case-insensitive substring match on account names
// @Tags user
// @Accept json
// @Produce json
// @Param request body object{name=string} true "Name fragment"
// @Success 200 {object} object{users=[]models.Account}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /user/search [post]
func (s *Server) SearchAccounts(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	accounts, err := s.accountService.Search(c.UserContext(), req.Name)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"users": accounts})
}

// GetAllAccounts handles GET /user/all-users
// @Summary List accounts
// @Tags user
// @Produce json
// @Success 200 {object} object{users=[]models.Account}
// @Failure 500 {object} models.ErrorResponse
// @Router /user/all-users [get]
func (s *Server) GetAllAccounts(c *fiber.Ctx) error {
	accounts, err := s.accountService.List(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"users": accounts})
}
