package model

import "time"

// Blog is a rich-text article. Content is HTML whose inline images are
// externalized to blogsWall/{ID}/ on save.
type Blog struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     *string    `json:"excerpt,omitempty"`
	Content     string     `json:"content"`
	CoverImage  *string    `json:"cover_image,omitempty"`
	Author      *string    `json:"author,omitempty"`
	IsPublished bool       `json:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
