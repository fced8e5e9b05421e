package models

import (
	"time"
)

// Post represents a blog article.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Excerpt    string    `json:"excerpt"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CoverImage string    `json:"cover_image"`
	Published  bool      `gorm:"not null;default:true" json:"published"`
	Views      int       `gorm:"not null;default:0" json:"views"`
	Likes      int       `gorm:"not null;default:0" json:"likes"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	Author     User      `gorm:"foreignKey:AuthorID" json:"author"`
	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags       []Tag     `gorm:"many2many:post_tags" json:"tags"`
	Comments   []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
