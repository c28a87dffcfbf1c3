package models

import (
	"time"

	"github.com/lib/pq"
)

// Content is a piece of publishable content with its attached images.
// Read-only from the engine's point of view; dry runs freeze their own
// snapshot into MockPublication so later edits don't rewrite history.
type Content struct {
	Id        string         `gorm:"column:id;primaryKey" json:"id"`
	ProjectId string         `gorm:"column:project_id;index" json:"projectId"`
	Title     string         `gorm:"column:title" json:"title"`
	Body      string         `gorm:"column:body" json:"body"`
	Excerpt   string         `gorm:"column:excerpt" json:"excerpt,omitempty"`
	Slug      *string        `gorm:"column:slug" json:"slug,omitempty"`
	ImageUrls pq.StringArray `gorm:"column:image_urls;type:text[]" json:"imageUrls,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updatedAt"`
}
