package model

import "time"

// News is a public announcement.
type News struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	ImageURL    *string    `json:"image_url"`
	IsPublished bool       `json:"is_published"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewsRequest is the payload for creating or updating a news item.
type NewsRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=255"`
	Content     string  `json:"content" binding:"required"`
	ImageURL    *string `json:"image_url" binding:"omitempty,max=2048"`
	IsPublished bool    `json:"is_published"`
}
