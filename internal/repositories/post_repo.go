package repositories

import (
	"socialblog/internal/models"
)

// PostRepository defines the interface for post data access. All list
// methods return posts newest-created first with the author record
// loaded alongside each post.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id string) (*models.Post, error)
	GetAll() ([]models.Post, error)
	GetByAuthor(authorID string) ([]models.Post, error)
	SearchByTitle(title string) ([]models.Post, error)
	FilterByCity(city string) ([]models.Post, error)
	Update(post *models.Post) error
	Delete(id string) error

	// ToggleLike flips the (post, user) like membership as an atomic
	// conditional write and reports the resulting state.
	ToggleLike(postID, userID string) (liked bool, err error)
	CountLikes(postID string) (int64, error)
	LikesForPosts(postIDs []string) (map[string][]string, error)
}
