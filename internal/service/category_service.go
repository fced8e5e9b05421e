package service

import (
	"context"

	"zxyspace/internal/cache"
	"zxyspace/internal/middleware"
	"zxyspace/internal/models"
	"zxyspace/internal/repository"
	"zxyspace/internal/validation"
)

// CategoryRequest is the create and update payload for categories.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryService handles the category taxonomy.
type CategoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService creates a new category service.
func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// List returns all categories ordered by name, served from cache when warm.
func (s *CategoryService) List(ctx context.Context) ([]models.CategoryDTO, error) {
	var dtos []models.CategoryDTO
	err := cache.Aside(ctx, cache.CategoriesKey(), &dtos, cache.TaxonomyTTL, func() error {
		categories, err := s.categories.List(ctx)
		if err != nil {
			return err
		}
		dtos = make([]models.CategoryDTO, 0, len(categories))
		for i := range categories {
			dtos = append(dtos, models.ToCategoryDTO(&categories[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if dtos == nil {
		dtos = []models.CategoryDTO{}
	}
	return dtos, nil
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.CategoryDTO, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := models.ToCategoryDTO(category)
	return &dto, nil
}

func (s *CategoryService) GetByName(ctx context.Context, name string) (*models.CategoryDTO, error) {
	category, err := s.categories.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, models.NewNotFoundError("Category", "name", name)
	}
	dto := models.ToCategoryDTO(category)
	return &dto, nil
}

// Create adds a category; names are unique.
func (s *CategoryService) Create(ctx context.Context, req CategoryRequest) (*models.CategoryDTO, error) {
	if err := validation.ValidateName(req.Name); err != nil {
		return nil, models.NewFieldValidationError(map[string]string{"name": err.Error()})
	}
	exists, err := s.categories.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewAlreadyExistsError("Category", req.Name)
	}

	category := &models.Category{Name: req.Name, Description: req.Description}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	cache.InvalidateCategories(ctx)
	middleware.Logger.InfoContext(ctx, "category created", "category_id", category.ID, "name", category.Name)

	dto := models.ToCategoryDTO(category)
	return &dto, nil
}

// Update renames a category, keeping names unique.
func (s *CategoryService) Update(ctx context.Context, id uint, req CategoryRequest) (*models.CategoryDTO, error) {
	if err := validation.ValidateName(req.Name); err != nil {
		return nil, models.NewFieldValidationError(map[string]string{"name": err.Error()})
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.Name != req.Name {
		exists, err := s.categories.ExistsByName(ctx, req.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, models.NewAlreadyExistsError("Category", req.Name)
		}
	}

	category.Name = req.Name
	category.Description = req.Description
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	cache.InvalidateCategories(ctx)
	cache.InvalidatePostLists(ctx)

	dto := models.ToCategoryDTO(category)
	return &dto, nil
}

// Delete removes a category; its posts survive uncategorized.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateCategories(ctx)
	cache.InvalidatePostLists(ctx)
	middleware.Logger.InfoContext(ctx, "category deleted", "category_id", id)
	return nil
}
