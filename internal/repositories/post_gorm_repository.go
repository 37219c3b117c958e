package repositories

import (
	"errors"
	"fmt"
	"strings"

	"socialblog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMPostRepository is a GORM implementation of PostRepository.
type GORMPostRepository struct {
	db *gorm.DB
}

// NewGORMPostRepository creates a new instance of GORMPostRepository.
func NewGORMPostRepository(db *gorm.DB) *GORMPostRepository {
	return &GORMPostRepository{
		db: db,
	}
}

// Create creates a new post in the database.
func (r *GORMPostRepository) Create(post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a single post by its ID.
func (r *GORMPostRepository) GetByID(id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Author").First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post by ID %s: %w", id, err)
	}
	return &post, nil
}

// GetAll retrieves every post, newest first.
func (r *GORMPostRepository) GetAll() ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.Preload("Author").Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get all posts: %w", err)
	}
	return posts, nil
}

// GetByAuthor retrieves the posts owned by one account, newest first.
func (r *GORMPostRepository) GetByAuthor(authorID string) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("Author").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get posts by author %s: %w", authorID, err)
	}
	return posts, nil
}

// likeEscaper neutralizes the LIKE wildcards so the query text is
// matched literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByTitle matches titles by case-insensitive substring.
func (r *GORMPostRepository) SearchByTitle(title string) ([]models.Post, error) {
	var posts []models.Post
	pattern := "%" + likeEscaper.Replace(strings.ToLower(title)) + "%"
	err := r.db.Preload("Author").
		Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search posts by title: %w", err)
	}
	return posts, nil
}

// FilterByCity matches the city by case-insensitive full-string
// equality, not substring.
func (r *GORMPostRepository) FilterByCity(city string) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("Author").
		Where("LOWER(city) = ?", strings.ToLower(city)).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to filter posts by city: %w", err)
	}
	return posts, nil
}

// Update saves the post back to the database.
func (r *GORMPostRepository) Update(post *models.Post) error {
	res := r.db.Save(post)
	if res.Error != nil {
		return fmt.Errorf("failed to update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post with ID %s for update: %w", post.ID, ErrNotFound)
	}
	return nil
}

// Delete permanently removes a post and its like memberships. Likes
// are not stored independently of the post, so they go with it.
func (r *GORMPostRepository) Delete(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("post with ID %s for deletion: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}
	return nil
}

// ToggleLike adds the account to the post's like set if absent and
// removes it if present. Both paths are single atomic statements: the
// insert relies on the (post, user) unique index with ON CONFLICT DO
// NOTHING, so concurrent toggles never produce duplicate memberships
// or lost removals.
func (r *GORMPostRepository) ToggleLike(postID, userID string) (bool, error) {
	like := models.Like{PostID: postID, UserID: userID}
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
	if res.Error != nil {
		return false, fmt.Errorf("failed to like post %s: %w", postID, res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// Membership already existed: this toggle is an unlike.
	err := r.db.Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{}).Error
	if err != nil {
		return false, fmt.Errorf("failed to unlike post %s: %w", postID, err)
	}
	return false, nil
}

// CountLikes returns the size of the post's like set.
func (r *GORMPostRepository) CountLikes(postID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes for post %s: %w", postID, err)
	}
	return count, nil
}

// LikesForPosts returns the liking account ids for each of the given
// posts in one query, keyed by post id.
func (r *GORMPostRepository) LikesForPosts(postIDs []string) (map[string][]string, error) {
	likes := make(map[string][]string, len(postIDs))
	if len(postIDs) == 0 {
		return likes, nil
	}
	var rows []models.Like
	if err := r.db.Where("post_id IN ?", postIDs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}
	for _, row := range rows {
		likes[row.PostID] = append(likes[row.PostID], row.UserID)
	}
	return likes, nil
}
