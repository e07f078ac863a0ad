package server

import (
	"boostly/internal/models"
	"boostly/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCompanyPosts handles GET /company/getposts/:cname
// @Summary Posts published by a company
// @Description Newest first. Boost values are refreshed from the like ledger before returning.
// @Tags company
// @Produce json
// @Param cname path string true "Company name"
// @Success 200 {object} object{posts=[]models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /company/getposts/{cname} [get]
func (s *Server) GetCompanyPosts(c *fiber.Ctx) error {
	name, err := pathName(c, "cname")
	if err != nil {
		return nil
	}

	posts, err := s.feedService.GetPostsForCompany(c.UserContext(), name)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetPost handles GET /company/getpost/:id
// @Summary Get a post
// @Tags company
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{post=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /company/getpost/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.feedService.GetPost(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

// CreatePost handles POST /company/create_post
// @Summary Publish a post
// @Tags company
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{mediaUrl=string,post_description=string} true "Post"
// @Success 201 {object} object{message=string,post_id=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /company/create_post [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	companyID, err := requireCompanyID(c)
	if err != nil {
		return nil
	}

	var req struct {
		MediaURL    string `json:"mediaUrl"`
		Description string `json:"post_description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	postID, err := s.engagementService.CreatePost(c.UserContext(), service.CreatePostInput{
		CompanyID:   companyID,
		MediaURL:    req.MediaURL,
		Description: req.Description,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created",
		"post_id": postID,
	})
}

// LikePost handles GET /company/like_post/:id
// @Summary Like a post
// @Description A company may like each post once
// @Tags company
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /company/like_post/{id} [get]
func (s *Server) LikePost(c *fiber.Ctx) error {
	companyID, err := requireCompanyID(c)
	if err != nil {
		return nil
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.engagementService.LikePost(c.UserContext(), postID, companyID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post liked"})
}
