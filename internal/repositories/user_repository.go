package repositories

import (
	"errors"

	"socialblog/internal/models"
)

// ErrNotFound is returned by repositories when the requested record
// does not exist. Callers match it with errors.Is.
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for account data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	GetAll() ([]models.User, error)
	Update(user *models.User) error
}
