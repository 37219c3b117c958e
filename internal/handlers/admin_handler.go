package handlers

import (
	"log"

	"socialblog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the admin dashboard endpoints. The routes it
// registers must sit behind the admin middleware; the handlers assume
// the caller's role was already checked.
type AdminHandler struct {
	service *services.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *services.AdminService) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

// RegisterRoutes registers the admin routes with the Fiber app.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/posts", h.HandleGetAllPosts)
	router.Get("/users", h.HandleGetAllUsers)
	router.Delete("/posts/:id", h.HandleDeletePost)
}

// HandleGetAllPosts returns every post with the full author projection.
func (h *AdminHandler) HandleGetAllPosts(c *fiber.Ctx) error {
	posts, err := h.service.ListAllPosts()
	if err != nil {
		log.Printf("Error listing all posts: %v", err)
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// HandleGetAllUsers returns every account.
func (h *AdminHandler) HandleGetAllUsers(c *fiber.Ctx) error {
	users, err := h.service.ListAllUsers()
	if err != nil {
		log.Printf("Error listing all users: %v", err)
		return respondError(c, err)
	}
	return c.JSON(users)
}

// HandleDeletePost removes any post regardless of ownership.
func (h *AdminHandler) HandleDeletePost(c *fiber.Ctx) error {
	if err := h.service.DeletePost(c.Params("id")); err != nil {
		log.Printf("Error deleting post %s as admin: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Post deleted by admin",
	})
}
