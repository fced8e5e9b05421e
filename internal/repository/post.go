package repository

import (
	"context"
	"errors"

	"zxyspace/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListPublished(ctx context.Context, pr models.PageRequest) ([]models.Post, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, pr models.PageRequest) ([]models.Post, int64, error)
	ListByCategory(ctx context.Context, categoryID uint, pr models.PageRequest) ([]models.Post, int64, error)
	ListByTag(ctx context.Context, tagID uint) ([]models.Post, error)
	Search(ctx context.Context, query string, pr models.PageRequest) ([]models.Post, int64, error)
	Recent(ctx context.Context, limit int) ([]models.Post, error)
	Popular(ctx context.Context, limit int) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post, tags []models.Tag, replaceTags bool) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
	IncrementLikes(ctx context.Context, id uint) error
	DecrementLikes(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", "id", id)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) listPaged(ctx context.Context, scope func(*gorm.DB) *gorm.DB, pr models.PageRequest) ([]models.Post, int64, error) {
	base := scope(r.db.WithContext(ctx).Model(&models.Post{}))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := paged(base.Session(&gorm.Session{}), pr).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) ListPublished(ctx context.Context, pr models.PageRequest) ([]models.Post, int64, error) {
	return r.listPaged(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("published = ?", true)
	}, pr)
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, pr models.PageRequest) ([]models.Post, int64, error) {
	return r.listPaged(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("author_id = ? AND published = ?", authorID, true)
	}, pr)
}

func (r *postRepository) ListByCategory(ctx context.Context, categoryID uint, pr models.PageRequest) ([]models.Post, int64, error) {
	return r.listPaged(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("category_id = ? AND published = ?", categoryID, true)
	}, pr)
}

// ListByTag loads the full published post set for a tag ordered newest first.
// Tag membership lives in a join table, so the page window is applied by the
// caller over the loaded slice.
func (r *postRepository) ListByTag(ctx context.Context, tagID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id = ? AND posts.published = ?", tagID, true).
		Order("posts.created_at DESC").
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Search(ctx context.Context, query string, pr models.PageRequest) ([]models.Post, int64, error) {
	pattern := "%" + query + "%"
	return r.listPaged(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("published = ? AND (LOWER(title) LIKE LOWER(?) OR LOWER(content) LIKE LOWER(?))",
			true, pattern, pattern)
	}, pr)
}

func (r *postRepository) Recent(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Popular(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("views DESC").
		Limit(limit).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Find(&posts).Error
	return posts, err
}

// Update persists the post row and, when replaceTags is set, swaps the tag
// association wholesale inside one transaction.
func (r *postRepository) Update(ctx context.Context, post *models.Post, tags []models.Tag, replaceTags bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Author", "Category", "Comments").Save(post).Error; err != nil {
			return err
		}
		if replaceTags {
			if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the post along with its comments and tag join rows.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

func (r *postRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *postRepository) IncrementLikes(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + 1")).Error
}

// DecrementLikes floors the counter at zero. The CASE form keeps the statement
// portable across postgres and the sqlite driver used in tests.
func (r *postRepository) DecrementLikes(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END")).Error
}
