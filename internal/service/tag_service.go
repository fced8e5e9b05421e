package service

import (
	"context"

	"zxyspace/internal/cache"
	"zxyspace/internal/middleware"
	"zxyspace/internal/models"
	"zxyspace/internal/repository"
	"zxyspace/internal/validation"
)

// TagRequest is the create and update payload for tags.
type TagRequest struct {
	Name string `json:"name"`
}

// TagService handles the tag taxonomy.
type TagService struct {
	tags repository.TagRepository
}

// NewTagService creates a new tag service.
func NewTagService(tags repository.TagRepository) *TagService {
	return &TagService{tags: tags}
}

// List returns all tags ordered by name, served from cache when warm.
func (s *TagService) List(ctx context.Context) ([]models.TagDTO, error) {
	var dtos []models.TagDTO
	err := cache.Aside(ctx, cache.TagsKey(), &dtos, cache.TaxonomyTTL, func() error {
		tags, err := s.tags.List(ctx)
		if err != nil {
			return err
		}
		dtos = models.ToTagDTOs(tags)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if dtos == nil {
		dtos = []models.TagDTO{}
	}
	return dtos, nil
}

// GetByIDs returns the tags matching the given ids; unknown ids are skipped.
func (s *TagService) GetByIDs(ctx context.Context, ids []uint) ([]models.TagDTO, error) {
	tags, err := s.tags.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return models.ToTagDTOs(tags), nil
}

// GetByNames returns the tags matching the given names; unknown names are skipped.
func (s *TagService) GetByNames(ctx context.Context, names []string) ([]models.TagDTO, error) {
	tags, err := s.tags.GetByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	return models.ToTagDTOs(tags), nil
}

func (s *TagService) Get(ctx context.Context, id uint) (*models.TagDTO, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := models.ToTagDTO(tag)
	return &dto, nil
}

func (s *TagService) GetByName(ctx context.Context, name string) (*models.TagDTO, error) {
	tag, err := s.tags.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, models.NewNotFoundError("Tag", "name", name)
	}
	dto := models.ToTagDTO(tag)
	return &dto, nil
}

// Create adds a tag; names are unique.
func (s *TagService) Create(ctx context.Context, req TagRequest) (*models.TagDTO, error) {
	if err := validation.ValidateName(req.Name); err != nil {
		return nil, models.NewFieldValidationError(map[string]string{"name": err.Error()})
	}
	exists, err := s.tags.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewAlreadyExistsError("Tag", req.Name)
	}

	tag := &models.Tag{Name: req.Name}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	cache.InvalidateTags(ctx)
	middleware.Logger.InfoContext(ctx, "tag created", "tag_id", tag.ID, "name", tag.Name)

	dto := models.ToTagDTO(tag)
	return &dto, nil
}

// Update renames a tag, keeping names unique.
func (s *TagService) Update(ctx context.Context, id uint, req TagRequest) (*models.TagDTO, error) {
	if err := validation.ValidateName(req.Name); err != nil {
		return nil, models.NewFieldValidationError(map[string]string{"name": err.Error()})
	}
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag.Name != req.Name {
		exists, err := s.tags.ExistsByName(ctx, req.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, models.NewAlreadyExistsError("Tag", req.Name)
		}
	}

	tag.Name = req.Name
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, err
	}
	cache.InvalidateTags(ctx)
	cache.InvalidatePostLists(ctx)

	dto := models.ToTagDTO(tag)
	return &dto, nil
}

// Delete removes a tag and detaches it from posts.
func (s *TagService) Delete(ctx context.Context, id uint) error {
	if _, err := s.tags.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateTags(ctx)
	cache.InvalidatePostLists(ctx)
	middleware.Logger.InfoContext(ctx, "tag deleted", "tag_id", id)
	return nil
}
