package server

import (
	"strings"

	"zxyspace/internal/middleware"
	"zxyspace/internal/models"
	"zxyspace/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts returns one page of published posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := s.postService.List(c.UserContext(), parsePageRequest(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(page)
}

// GetPost returns the full post detail and counts the view
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// GetPostsByAuthor returns one page of an author's posts
func (s *Server) GetPostsByAuthor(c *fiber.Ctx) error {
	authorID, err := s.parseID(c, "authorId")
	if err != nil {
		return nil
	}
	page, err := s.postService.ListByAuthor(c.UserContext(), authorID, parsePageRequest(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(page)
}

// GetPostsByCategory returns one page of published posts in a category
func (s *Server) GetPostsByCategory(c *fiber.Ctx) error {
	categoryID, err := s.parseID(c, "categoryId")
	if err != nil {
		return nil
	}
	page, err := s.postService.ListByCategory(c.UserContext(), categoryID, parsePageRequest(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(page)
}

// GetPostsByTag returns one page of published posts carrying a tag
func (s *Server) GetPostsByTag(c *fiber.Ctx) error {
	tagID, err := s.parseID(c, "tagId")
	if err != nil {
		return nil
	}
	page, err := s.postService.ListByTag(c.UserContext(), tagID, parsePageRequest(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(page)
}

// SearchPosts returns one page of published posts matching the query
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		return models.RespondWithError(c, models.NewValidationError("keyword parameter is required"))
	}
	page, err := s.postService.Search(c.UserContext(), keyword, parsePageRequest(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(page)
}

// GetRecentPosts returns the newest published posts
func (s *Server) GetRecentPosts(c *fiber.Ctx) error {
	posts, err := s.postService.Recent(c.UserContext(), parseFeedLimit(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(posts)
}

// GetPopularPosts returns the most viewed published posts
func (s *Server) GetPopularPosts(c *fiber.Ctx) error {
	posts, err := s.postService.Popular(c.UserContext(), parseFeedLimit(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost publishes a new post under the author in the path
func (s *Server) CreatePost(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return models.RespondWithError(c, models.NewUnauthorizedError("unauthorized access"))
	}
	authorID, err := s.parseID(c, "authorId")
	if err != nil {
		return nil
	}

	var req service.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Create(c.UserContext(), principal, authorID, req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost applies a partial update to a post
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return models.RespondWithError(c, models.NewUnauthorizedError("unauthorized access"))
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Update(c.UserContext(), principal, id, req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// DeletePost removes a post with its comments
func (s *Server) DeletePost(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return models.RespondWithError(c, models.NewUnauthorizedError("unauthorized access"))
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(c.UserContext(), principal, id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// ViewPost records an explicit view
func (s *Server) ViewPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.View(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// LikePost adds one like to a post
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.Like(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// UnlikePost removes one like from a post, never dropping below zero
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.Unlike(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}
