package services

import (
	"errors"
	"fmt"

	"socialblog/internal/models"
	"socialblog/internal/repositories"
	"socialblog/pkg/mediastore"
)

// ProfileInput carries the client-supplied profile fields. Empty
// fields are left untouched.
type ProfileInput struct {
	Name  string
	Bio   string
	Image *ImageUpload // nil means keep the current avatar
}

// UserService handles self-scoped profile reads and updates. The
// acting account is always the target, so no ownership policy runs
// here.
type UserService struct {
	userRepo repositories.UserRepository
	media    mediastore.Store
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, media mediastore.Store) *UserService {
	return &UserService{
		userRepo: userRepo,
		media:    media,
	}
}

// GetProfile returns the acting account's stored record.
func (s *UserService) GetProfile(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: account", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile overwrites only the provided, non-empty fields. A new
// avatar is uploaded before the account row is written.
func (s *UserService) UpdateProfile(userID string, in ProfileInput) (*models.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		if len(in.Name) > maxNameLength {
			return nil, fmt.Errorf("%w: name must be at most %d characters", ErrValidation, maxNameLength)
		}
		user.Name = in.Name
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}
	if in.Image != nil {
		imageURL, err := s.media.Upload(in.Image.Reader, in.Image.ContentType, mediastore.NamespaceUsers)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpload, err)
		}
		user.Image = imageURL
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}
