package models

import (
	"time"
)

// DTO types are the wire-facing projections of the entities. They never carry
// password hashes or unexported storage detail, and their field names follow
// the public API contract rather than the column names.

type UserDTO struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	AvatarURL string    `json:"avatarUrl"`
	Bio       string    `json:"bio"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummaryDTO is the compact author projection embedded in posts.
type UserSummaryDTO struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	AvatarURL string `json:"avatarUrl"`
}

type CategoryDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type TagDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CommentDTO struct {
	ID        uint           `json:"id"`
	Content   string         `json:"content"`
	Likes     int            `json:"likes"`
	PostID    uint           `json:"postId"`
	User      UserSummaryDTO `json:"user"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// PostDTO is the full detail projection, including content.
type PostDTO struct {
	ID         uint           `json:"id"`
	Title      string         `json:"title"`
	Excerpt    string         `json:"excerpt"`
	Content    string         `json:"content"`
	CoverImage string         `json:"coverImage"`
	Author     UserSummaryDTO `json:"author"`
	Category   *CategoryDTO   `json:"category"`
	Tags       []TagDTO       `json:"tags"`
	Published  bool           `json:"published"`
	Views      int            `json:"views"`
	Likes      int            `json:"likes"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// PostSummaryDTO is the listing projection: excerpt instead of full content,
// plus the comment count for the listing cards.
type PostSummaryDTO struct {
	ID           uint           `json:"id"`
	Title        string         `json:"title"`
	Excerpt      string         `json:"excerpt"`
	CoverImage   string         `json:"coverImage"`
	Author       UserSummaryDTO `json:"author"`
	Category     *CategoryDTO   `json:"category"`
	Tags         []TagDTO       `json:"tags"`
	CommentCount int64          `json:"commentCount"`
	Published    bool           `json:"published"`
	Views        int            `json:"views"`
	Likes        int            `json:"likes"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// TokenResponse is the login response.
type TokenResponse struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func ToUserDTO(u *User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserSummaryDTO(u *User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
	}
}

func ToCategoryDTO(c *Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, Description: c.Description}
}

func ToTagDTO(t *Tag) TagDTO {
	return TagDTO{ID: t.ID, Name: t.Name}
}

func ToTagDTOs(tags []Tag) []TagDTO {
	out := make([]TagDTO, 0, len(tags))
	for i := range tags {
		out = append(out, ToTagDTO(&tags[i]))
	}
	return out
}

func ToCommentDTO(c *Comment) CommentDTO {
	return CommentDTO{
		ID:        c.ID,
		Content:   c.Content,
		Likes:     c.Likes,
		PostID:    c.PostID,
		User:      ToUserSummaryDTO(&c.User),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func ToPostDTO(p *Post) PostDTO {
	dto := PostDTO{
		ID:         p.ID,
		Title:      p.Title,
		Excerpt:    p.Excerpt,
		Content:    p.Content,
		CoverImage: p.CoverImage,
		Author:     ToUserSummaryDTO(&p.Author),
		Tags:       ToTagDTOs(p.Tags),
		Published:  p.Published,
		Views:      p.Views,
		Likes:      p.Likes,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.Category != nil {
		cat := ToCategoryDTO(p.Category)
		dto.Category = &cat
	}
	return dto
}

func ToPostSummaryDTO(p *Post, commentCount int64) PostSummaryDTO {
	dto := PostSummaryDTO{
		ID:           p.ID,
		Title:        p.Title,
		Excerpt:      p.Excerpt,
		CoverImage:   p.CoverImage,
		Author:       ToUserSummaryDTO(&p.Author),
		Tags:         ToTagDTOs(p.Tags),
		CommentCount: commentCount,
		Published:    p.Published,
		Views:        p.Views,
		Likes:        p.Likes,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Category != nil {
		cat := ToCategoryDTO(p.Category)
		dto.Category = &cat
	}
	return dto
}
