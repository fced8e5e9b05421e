package server

import (
	"zxyspace/internal/middleware"
	"zxyspace/internal/models"
	"zxyspace/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComment returns a single comment
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(comment)
}

// GetPostComments returns all comments on a post, oldest first
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	comments, err := s.commentService.ListByPost(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(comments)
}

// GetPostCommentsPaged returns one page of a post's comments
func (s *Server) GetPostCommentsPaged(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	page, err := s.commentService.ListByPostPaged(c.UserContext(), postID, parsePageRequest(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(page)
}

// GetUserComments returns one page of a user's comments
func (s *Server) GetUserComments(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	page, err := s.commentService.ListByUser(c.UserContext(), userID, parsePageRequest(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(page)
}

// GetPostCommentCount returns the number of comments on a post
func (s *Server) GetPostCommentCount(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	count, err := s.commentService.CountByPost(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// CreateComment adds a comment to a post
func (s *Server) CreateComment(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return models.RespondWithError(c, models.NewUnauthorizedError("unauthorized access"))
	}
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	var req service.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.Create(c.UserContext(), principal, postID, userID, req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment rewrites a comment's content
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return models.RespondWithError(c, models.NewUnauthorizedError("unauthorized access"))
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.Update(c.UserContext(), principal, id, req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment removes a comment
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return models.RespondWithError(c, models.NewUnauthorizedError("unauthorized access"))
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.Delete(c.UserContext(), principal, id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
}

// LikeComment adds one like to a comment
func (s *Server) LikeComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.Like(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(comment)
}

// UnlikeComment removes one like from a comment, never dropping below zero
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.Unlike(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(comment)
}
