package handlers

import (
	"errors"
	"mime/multipart"

	"socialblog/internal/models"
	"socialblog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps the service error taxonomy to HTTP statuses. A
// missing resource reports 404 even to callers who would also have
// failed the ownership check; the services guarantee that ordering.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrAuthentication):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrAuthorization):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrUpload):
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{
		"message": err.Error(),
	})
}

// currentUser returns the account loaded by the auth middleware.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// formImage opens the named multipart file, if present. The caller
// owns the returned closer.
func formImage(c *fiber.Ctx, field string) (*services.ImageUpload, multipart.File, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		// No file attached; the services decide whether that is valid.
		return nil, nil, nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, err
	}
	upload := &services.ImageUpload{
		Reader:      file,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}
	return upload, file, nil
}

// formTags returns the raw tags form values: either several values or
// a single comma-separated one, both normalized by the services.
func formTags(c *fiber.Ctx) []string {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form.Value["tags"]
}
