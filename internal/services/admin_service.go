package services

import (
	"errors"
	"fmt"
	"log"

	"socialblog/internal/models"
	"socialblog/internal/repositories"
	"socialblog/pkg/events"
)

// AdminService provides the platform-wide rollups and the moderation
// delete. The admin role check happens at the route boundary; this
// component assumes the caller is already authorized.
type AdminService struct {
	postRepo repositories.PostRepository
	userRepo repositories.UserRepository
	mqClient *events.Client
}

// NewAdminService creates a new AdminService. mqClient may be nil.
func NewAdminService(postRepo repositories.PostRepository, userRepo repositories.UserRepository, mqClient *events.Client) *AdminService {
	return &AdminService{
		postRepo: postRepo,
		userRepo: userRepo,
		mqClient: mqClient,
	}
}

// ListAllPosts returns every post with the full author projection.
func (s *AdminService) ListAllPosts() ([]models.PostView, error) {
	posts, err := s.postRepo.GetAll()
	if err != nil {
		return nil, err
	}
	return postViews(s.postRepo, posts, true)
}

// ListAllUsers returns every account. Password hashes never serialize.
func (s *AdminService) ListAllUsers() ([]models.User, error) {
	return s.userRepo.GetAll()
}

// DeletePost removes any post regardless of ownership. The role gate
// already established the caller is an admin, so only existence is
// checked here.
func (s *AdminService) DeletePost(postID string) error {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: post %s", ErrNotFound, postID)
		}
		return err
	}
	if err := s.postRepo.Delete(postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if s.mqClient != nil {
		err := s.mqClient.PublishPostEvent(events.PostDeleted, map[string]interface{}{
			"postID":    post.ID,
			"authorID":  post.AuthorID,
			"title":     post.Title,
			"moderated": true,
		})
		if err != nil {
			log.Printf("Warning: Failed to publish moderation delete event for post %s: %v", post.ID, err)
		}
	}
	return nil
}
