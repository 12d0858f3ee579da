package model

import "time"

// HeroImage is one slide of the landing page carousel.
type HeroImage struct {
	ID        int       `json:"id"`
	ImageURL  string    `json:"image_url"`
	Caption   string    `json:"caption"`
	LinkURL   *string   `json:"link_url"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HeroImageRequest is the payload for creating or updating a hero image.
// ImageURL is filled from the upload when the request is multipart.
type HeroImageRequest struct {
	ImageURL  string  `json:"image_url" form:"image_url" binding:"omitempty,max=2048"`
	Caption   string  `json:"caption" form:"caption" binding:"max=255"`
	LinkURL   *string `json:"link_url" form:"link_url" binding:"omitempty,max=2048"`
	SortOrder int     `json:"sort_order" form:"sort_order" binding:"min=0"`
	IsActive  bool    `json:"is_active" form:"is_active"`
}
