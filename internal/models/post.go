package models

import "time"

// Post is an image-backed entry tagged by city and topic. The author
// relation is a reference, not an embedded document; read endpoints
// merge the author projection in at query time (see PostView).
type Post struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title       string    `json:"title" gorm:"not null" validate:"required"`
	Description string    `json:"description"`
	Image       string    `json:"image" gorm:"not null"` // required at creation
	City        string    `json:"city"`
	Tags        []string  `json:"tags" gorm:"serializer:json"` // order as submitted, duplicates kept
	AuthorID    string    `json:"author_id" gorm:"type:varchar(36);index;not null"`
	Author      User      `json:"-" gorm:"foreignKey:AuthorID"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Author is the owning-account projection merged into a post at read
// time. Email and Role are only filled for admin listings.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// PostView is the shape every post read endpoint returns: the stored
// post merged with its author projection and like membership.
type PostView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	City        string    `json:"city"`
	Tags        []string  `json:"tags"`
	Author      Author    `json:"author"`
	Likes       []string  `json:"likes"` // account ids, membership not count
	LikesCount  int       `json:"likesCount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
