package handlers

import (
	"log"

	"socialblog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PostHandler handles HTTP requests for posts.
type PostHandler struct {
	service *services.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service *services.PostService) *PostHandler {
	return &PostHandler{
		service: service,
	}
}

// RegisterPublicRoutes registers the unauthenticated read routes.
func (h *PostHandler) RegisterPublicRoutes(router fiber.Router) {
	postRoutes := router.Group("/posts")
	postRoutes.Get("/", h.HandleList)
	postRoutes.Get("/search", h.HandleSearch)
	postRoutes.Get("/filter", h.HandleFilter)
}

// RegisterProtectedRoutes registers the routes requiring a session.
func (h *PostHandler) RegisterProtectedRoutes(router fiber.Router) {
	postRoutes := router.Group("/posts")
	postRoutes.Post("/", h.HandleCreate)
	postRoutes.Get("/my", h.HandleMyPosts)
	postRoutes.Put("/:id", h.HandleUpdate)
	postRoutes.Delete("/:id", h.HandleDelete)
	postRoutes.Patch("/:id/like", h.HandleToggleLike)
}

// HandleList returns every post, newest first.
func (h *PostHandler) HandleList(c *fiber.Ctx) error {
	posts, err := h.service.List()
	if err != nil {
		log.Printf("Error listing posts: %v", err)
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// HandleSearch returns posts whose title contains the query,
// case-insensitively. An empty query yields an empty list.
func (h *PostHandler) HandleSearch(c *fiber.Ctx) error {
	posts, err := h.service.SearchByTitle(c.Query("title"))
	if err != nil {
		log.Printf("Error searching posts: %v", err)
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// HandleFilter returns posts whose city equals the query,
// case-insensitively. An empty query yields an empty list.
func (h *PostHandler) HandleFilter(c *fiber.Ctx) error {
	posts, err := h.service.FilterByCity(c.Query("city"))
	if err != nil {
		log.Printf("Error filtering posts: %v", err)
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// HandleMyPosts returns the caller's own posts.
func (h *PostHandler) HandleMyPosts(c *fiber.Ctx) error {
	posts, err := h.service.ListMine(currentUser(c).ID)
	if err != nil {
		log.Printf("Error listing own posts: %v", err)
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// HandleCreate creates a post from a multipart form. The image file
// is mandatory and is uploaded before anything is persisted.
func (h *PostHandler) HandleCreate(c *fiber.Ctx) error {
	image, file, err := formImage(c, "image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid image upload",
		})
	}
	if file != nil {
		defer file.Close()
	}

	in := services.PostInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		City:        c.FormValue("city"),
		Tags:        formTags(c),
		Image:       image,
	}

	post, err := h.service.Create(currentUser(c).ID, in)
	if err != nil {
		log.Printf("Error creating post: %v", err)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// HandleUpdate partially updates a post. Only fields present in the
// form overwrite stored values; the services enforce ownership.
func (h *PostHandler) HandleUpdate(c *fiber.Ctx) error {
	image, file, err := formImage(c, "image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid image upload",
		})
	}
	if file != nil {
		defer file.Close()
	}

	in := services.PostInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		City:        c.FormValue("city"),
		Tags:        formTags(c),
		Image:       image,
	}

	post, err := h.service.Update(currentUser(c), c.Params("id"), in)
	if err != nil {
		log.Printf("Error updating post %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return c.JSON(post)
}

// HandleDelete permanently removes a post.
func (h *PostHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(currentUser(c), c.Params("id")); err != nil {
		log.Printf("Error deleting post %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Post deleted",
	})
}

// HandleToggleLike flips the caller's like on a post.
func (h *PostHandler) HandleToggleLike(c *fiber.Ctx) error {
	liked, likesCount, err := h.service.ToggleLike(currentUser(c), c.Params("id"))
	if err != nil {
		log.Printf("Error toggling like on post %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"liked":      liked,
		"likesCount": likesCount,
	})
}
