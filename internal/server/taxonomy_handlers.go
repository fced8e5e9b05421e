package server

import (
	"strconv"
	"strings"

	"zxyspace/internal/models"
	"zxyspace/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCategories returns all categories ordered by name
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryService.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(categories)
}

// GetCategory returns a single category
func (s *Server) GetCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	category, err := s.categoryService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(category)
}

// GetCategoryByName looks a category up by its unique name
func (s *Server) GetCategoryByName(c *fiber.Ctx) error {
	category, err := s.categoryService.GetByName(c.UserContext(), c.Params("name"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(category)
}

// CreateCategory adds a category
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	category, err := s.categoryService.Create(c.UserContext(), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory renames a category
func (s *Server) UpdateCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	category, err := s.categoryService.Update(c.UserContext(), id, req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(category)
}

// DeleteCategory removes a category, leaving its posts uncategorized
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.categoryService.Delete(c.UserContext(), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted successfully"})
}

// GetTags returns all tags ordered by name
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.tagService.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(tags)
}

// GetTag returns a single tag
func (s *Server) GetTag(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	tag, err := s.tagService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(tag)
}

// GetTagsByIDs resolves a comma-separated ids query into tags
func (s *Server) GetTagsByIDs(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("ids"))
	if raw == "" {
		return models.RespondWithError(c, models.NewValidationError("ids parameter is required"))
	}
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil || id == 0 {
			return models.RespondWithError(c, models.NewValidationError("Invalid tag id: "+part))
		}
		ids = append(ids, uint(id))
	}
	tags, err := s.tagService.GetByIDs(c.UserContext(), ids)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(tags)
}

// GetTagsByNames resolves a comma-separated names query into tags
func (s *Server) GetTagsByNames(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("names"))
	if raw == "" {
		return models.RespondWithError(c, models.NewValidationError("names parameter is required"))
	}
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	tags, err := s.tagService.GetByNames(c.UserContext(), names)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(tags)
}

// GetTagByName looks a tag up by its unique name
func (s *Server) GetTagByName(c *fiber.Ctx) error {
	tag, err := s.tagService.GetByName(c.UserContext(), c.Params("name"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(tag)
}

// CreateTag adds a tag
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var req service.TagRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	tag, err := s.tagService.Create(c.UserContext(), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

// UpdateTag renames a tag
func (s *Server) UpdateTag(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.TagRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	tag, err := s.tagService.Update(c.UserContext(), id, req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(tag)
}

// DeleteTag removes a tag and detaches it from posts
func (s *Server) DeleteTag(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.tagService.Delete(c.UserContext(), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Tag deleted successfully"})
}
