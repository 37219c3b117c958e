package handlers

import (
	"log"

	"socialblog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for the caller's own profile.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// RegisterRoutes registers the profile routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/profile", h.HandleGetProfile)
	userRoutes.Put("/profile", h.HandleUpdateProfile)
}

// HandleGetProfile returns the caller's account record.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.service.GetProfile(currentUser(c).ID)
	if err != nil {
		log.Printf("Error getting profile: %v", err)
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleUpdateProfile partially updates the caller's profile from a
// multipart form; an attached image replaces the avatar.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	image, file, err := formImage(c, "image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid image upload",
		})
	}
	if file != nil {
		defer file.Close()
	}

	in := services.ProfileInput{
		Name:  c.FormValue("name"),
		Bio:   c.FormValue("bio"),
		Image: image,
	}

	user, err := h.service.UpdateProfile(currentUser(c).ID, in)
	if err != nil {
		log.Printf("Error updating profile: %v", err)
		return respondError(c, err)
	}
	return c.JSON(user)
}
