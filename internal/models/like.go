package models

// Like is one account's membership in one post's like set. The
// composite unique index keeps an account in the set at most once,
// which is what makes the like toggle a single atomic
// insert-or-nothing statement.
type Like struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_post_user"`
	PostID string `json:"post_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_post_user"`
}
