package service

import (
	"context"

	"zxyspace/internal/auth"
	"zxyspace/internal/middleware"
	"zxyspace/internal/models"
	"zxyspace/internal/repository"
	"zxyspace/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateUserRequest carries a partial profile update. Nil fields are left
// untouched.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	AvatarURL *string `json:"avatarUrl"`
	Bio       *string `json:"bio"`
}

// CreateUserRequest is the payload for administrative account creation. An
// empty role defaults to USER.
type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// UserService handles account registration, login and profile management.
type UserService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, tokens *auth.TokenService) *UserService {
	return &UserService{users: users, tokens: tokens}
}

// Register creates a new account with the USER role.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) error {
	fields := map[string]string{}
	if err := validation.ValidateUsername(req.Username); err != nil {
		fields["username"] = err.Error()
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		fields["email"] = err.Error()
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		fields["password"] = err.Error()
	}
	if len(fields) > 0 {
		return models.NewFieldValidationError(fields)
	}

	taken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return err
	}
	if taken {
		return models.NewValidationError("Error: Username is already taken!")
	}
	inUse, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if inUse {
		return models.NewValidationError("Error: Email is already in use!")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hash),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return nil
}

// Create adds an account on behalf of an administrator, optionally with the
// ADMIN role.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.UserDTO, error) {
	fields := map[string]string{}
	if err := validation.ValidateUsername(req.Username); err != nil {
		fields["username"] = err.Error()
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		fields["email"] = err.Error()
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		fields["password"] = err.Error()
	}
	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		fields["role"] = "role must be USER or ADMIN"
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	taken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewValidationError("Error: Username is already taken!")
	}
	inUse, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, models.NewValidationError("Error: Email is already in use!")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hash),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "user created", "user_id", user.ID, "username", user.Username, "role", user.Role)
	dto := models.ToUserDTO(user)
	return &dto, nil
}

// Login verifies credentials and issues a bearer token.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*models.TokenResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		middleware.Logger.WarnContext(ctx, "login failed", "username", req.Username)
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}
	return &models.TokenResponse{
		Token:    token,
		Type:     "Bearer",
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	}, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.UserDTO, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", "id", id)
	}
	dto := models.ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.UserDTO, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", "username", username)
	}
	dto := models.ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.UserDTO, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", "email", email)
	}
	dto := models.ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) List(ctx context.Context) ([]models.UserDTO, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]models.UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, models.ToUserDTO(&users[i]))
	}
	return dtos, nil
}

// Update applies a partial profile update. Only the account owner or an admin
// may modify a profile.
func (s *UserService) Update(ctx context.Context, principal auth.Principal, id uint, req UpdateUserRequest) (*models.UserDTO, error) {
	if principal.UserID != id && !principal.IsAdmin() {
		return nil, models.NewForbiddenError("cannot modify another user's profile")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", "id", id)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	dto := models.ToUserDTO(user)
	return &dto, nil
}

// Delete removes an account. Admin access is enforced at the route layer.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User", "id", id)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

// UsernameAvailable reports whether a username is free to register.
func (s *UserService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := s.users.ExistsByUsername(ctx, username)
	return !taken, err
}

// EmailAvailable reports whether an email is free to register.
func (s *UserService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	inUse, err := s.users.ExistsByEmail(ctx, email)
	return !inUse, err
}
