package server

import (
	"strings"

	"zxyspace/internal/middleware"
	"zxyspace/internal/models"
	"zxyspace/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUsers returns all users
func (s *Server) GetUsers(c *fiber.Ctx) error {
	users, err := s.userService.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(users)
}

// GetUser returns a single user by id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetByID(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// GetUserByUsername returns a single user by username
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	username := c.Params("username")
	user, err := s.userService.GetByUsername(c.UserContext(), username)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// CreateUser adds an account on behalf of an administrator
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Create(c.UserContext(), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetUserByEmail looks a user up by email
func (s *Server) GetUserByEmail(c *fiber.Ctx) error {
	user, err := s.userService.GetByEmail(c.UserContext(), c.Params("email"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdateUser applies a partial profile update
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return models.RespondWithError(c, models.NewUnauthorizedError("unauthorized access"))
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Update(c.UserContext(), principal, id, req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser removes an account. Admins only, gated at the route.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.userService.Delete(c.UserContext(), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// CheckUsername reports whether a username is free to register
func (s *Server) CheckUsername(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.Params("username"))
	if username == "" {
		return models.RespondWithError(c, models.NewValidationError("username is required"))
	}
	available, err := s.userService.UsernameAvailable(c.UserContext(), username)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"available": available})
}

// CheckEmail reports whether an email is free to register
func (s *Server) CheckEmail(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Params("email"))
	if email == "" {
		return models.RespondWithError(c, models.NewValidationError("email is required"))
	}
	available, err := s.userService.EmailAvailable(c.UserContext(), email)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"available": available})
}
