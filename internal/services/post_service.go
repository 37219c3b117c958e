package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"socialblog/internal/models"
	"socialblog/internal/repositories"
	"socialblog/pkg/events"
	"socialblog/pkg/mediastore"
)

// ImageUpload is an inbound image payload bound for the media store.
type ImageUpload struct {
	Reader      io.Reader
	ContentType string
}

// PostInput carries the client-supplied post fields. For updates every
// field is optional: empty strings and nil slices mean "not provided"
// and never clear an existing value.
type PostInput struct {
	Title       string
	Description string
	City        string
	Tags        []string     // raw form values; a single element may be comma-separated
	Image       *ImageUpload // nil means no new image
}

// PostService owns the post lifecycle: creation, mutation, deletion,
// like toggling and the read-side listings and queries.
type PostService struct {
	postRepo repositories.PostRepository
	userRepo repositories.UserRepository
	media    mediastore.Store
	mqClient *events.Client
}

// NewPostService creates a new PostService. mqClient may be nil, in
// which case lifecycle events are not published.
func NewPostService(postRepo repositories.PostRepository, userRepo repositories.UserRepository, media mediastore.Store, mqClient *events.Client) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		media:    media,
		mqClient: mqClient,
	}
}

// CanMutate reports whether the acting account may modify the post:
// the owning author, or any admin.
func CanMutate(actor *models.User, post *models.Post) bool {
	return actor.ID == post.AuthorID || actor.IsAdmin()
}

// Create stores a new post for the author. The image is mandatory and
// is uploaded before the row is written; a failed upload means nothing
// is persisted.
func (s *PostService) Create(authorID string, in PostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Image == nil {
		return nil, fmt.Errorf("%w: image is required", ErrValidation)
	}

	author, err := s.userRepo.GetByID(authorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: author account", ErrNotFound)
		}
		return nil, err
	}

	imageURL, err := s.media.Upload(in.Image.Reader, in.Image.ContentType, mediastore.NamespacePosts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	post := &models.Post{
		Title:       title,
		Description: in.Description,
		City:        in.City,
		Tags:        normalizeTags(in.Tags),
		Image:       imageURL,
		AuthorID:    author.ID,
	}
	if err := s.postRepo.Create(post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.publish(events.PostCreated, post)
	return post, nil
}

// Update overwrites only the provided, non-empty fields of the post.
// The existence check runs before the ownership check, so a missing
// post is reported as not found even to a caller who would not have
// been allowed to touch it.
func (s *PostService) Update(actor *models.User, postID string, in PostInput) (*models.Post, error) {
	post, err := s.resolve(postID)
	if err != nil {
		return nil, err
	}
	if !CanMutate(actor, post) {
		return nil, fmt.Errorf("%w: not the post owner", ErrAuthorization)
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		post.Title = title
	}
	if in.Description != "" {
		post.Description = in.Description
	}
	if in.City != "" {
		post.City = in.City
	}
	if tags := normalizeTags(in.Tags); len(tags) > 0 {
		post.Tags = tags
	}
	if in.Image != nil {
		imageURL, err := s.media.Upload(in.Image.Reader, in.Image.ContentType, mediastore.NamespacePosts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpload, err)
		}
		post.Image = imageURL
	}

	if err := s.postRepo.Update(post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

// Delete permanently removes the post after the same resolve then
// authorize sequence as Update.
func (s *PostService) Delete(actor *models.User, postID string) error {
	post, err := s.resolve(postID)
	if err != nil {
		return err
	}
	if !CanMutate(actor, post) {
		return fmt.Errorf("%w: not the post owner", ErrAuthorization)
	}
	if err := s.postRepo.Delete(postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	s.publish(events.PostDeleted, post)
	return nil
}

// ToggleLike flips the acting account's membership in the post's like
// set. Any authenticated account may like any post, the author
// included.
func (s *PostService) ToggleLike(actor *models.User, postID string) (liked bool, likesCount int, err error) {
	if _, err := s.resolve(postID); err != nil {
		return false, 0, err
	}
	liked, err = s.postRepo.ToggleLike(postID, actor.ID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to toggle like: %w", err)
	}
	count, err := s.postRepo.CountLikes(postID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return liked, int(count), nil
}

// List returns every post for public consumption, newest first.
func (s *PostService) List() ([]models.PostView, error) {
	posts, err := s.postRepo.GetAll()
	if err != nil {
		return nil, err
	}
	return postViews(s.postRepo, posts, false)
}

// ListMine returns the acting account's own posts, newest first.
func (s *PostService) ListMine(authorID string) ([]models.PostView, error) {
	posts, err := s.postRepo.GetByAuthor(authorID)
	if err != nil {
		return nil, err
	}
	return postViews(s.postRepo, posts, false)
}

// SearchByTitle matches titles by case-insensitive substring. An
// empty query returns an empty result rather than the full corpus.
func (s *PostService) SearchByTitle(title string) ([]models.PostView, error) {
	if strings.TrimSpace(title) == "" {
		return []models.PostView{}, nil
	}
	posts, err := s.postRepo.SearchByTitle(title)
	if err != nil {
		return nil, err
	}
	return postViews(s.postRepo, posts, false)
}

// FilterByCity matches the city by case-insensitive exact equality.
// An empty city returns an empty result.
func (s *PostService) FilterByCity(city string) ([]models.PostView, error) {
	if strings.TrimSpace(city) == "" {
		return []models.PostView{}, nil
	}
	posts, err := s.postRepo.FilterByCity(city)
	if err != nil {
		return nil, err
	}
	return postViews(s.postRepo, posts, false)
}

// resolve loads the post or reports ErrNotFound.
func (s *PostService) resolve(postID string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) publish(event string, post *models.Post) {
	if s.mqClient == nil {
		return
	}
	err := s.mqClient.PublishPostEvent(event, map[string]interface{}{
		"postID":   post.ID,
		"authorID": post.AuthorID,
		"title":    post.Title,
	})
	if err != nil {
		log.Printf("Warning: Failed to publish %s event for post %s: %v", event, post.ID, err)
	}
}

// normalizeTags applies the tag submission rules: a single value may
// be a comma-separated list; every element is trimmed; order and
// duplicates are preserved. Empty elements are dropped, so the empty
// tags field browsers send with every multipart form counts as "not
// provided" rather than a one-element list.
func normalizeTags(tags []string) []string {
	if len(tags) == 1 {
		tags = strings.Split(tags[0], ",")
	}
	var normalized []string
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			normalized = append(normalized, tag)
		}
	}
	return normalized
}

// postViews decorates stored posts with their author projection and
// like membership. Admin listings carry the fuller author projection.
func postViews(repo repositories.PostRepository, posts []models.Post, admin bool) ([]models.PostView, error) {
	ids := make([]string, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}
	likes, err := repo.LikesForPosts(ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.PostView, len(posts))
	for i, post := range posts {
		author := models.Author{
			ID:    post.Author.ID,
			Name:  post.Author.Name,
			Image: post.Author.Image,
		}
		if admin {
			author.Email = post.Author.Email
			author.Role = post.Author.Role
		}
		postLikes := likes[post.ID]
		if postLikes == nil {
			postLikes = []string{}
		}
		views[i] = models.PostView{
			ID:          post.ID,
			Title:       post.Title,
			Description: post.Description,
			Image:       post.Image,
			City:        post.City,
			Tags:        post.Tags,
			Author:      author,
			Likes:       postLikes,
			LikesCount:  len(postLikes),
			CreatedAt:   post.CreatedAt,
			UpdatedAt:   post.UpdatedAt,
		}
	}
	return views, nil
}
