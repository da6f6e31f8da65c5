package models

import "time"

// Post ialah artikel blog dwibahasa.
type Post struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Slug        string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Title       LocalizedText `gorm:"embedded;embeddedPrefix:title_" json:"title"`
	Body        LocalizedText `gorm:"embedded;embeddedPrefix:body_" json:"body"`
	CoverURL    string        `gorm:"type:varchar(255)" json:"cover_url"`
	PublishedAt *time.Time    `gorm:"index" json:"published_at,omitempty"`
	CreatedAt   time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null" json:"updated_at"`
}

// IsPublished reports whether the post is visible on the public site.
func (p *Post) IsPublished(now time.Time) bool {
	return p.PublishedAt != nil && !p.PublishedAt.After(now)
}
