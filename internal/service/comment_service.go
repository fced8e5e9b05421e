package service

import (
	"context"

	"zxyspace/internal/auth"
	"zxyspace/internal/middleware"
	"zxyspace/internal/models"
	"zxyspace/internal/repository"
)

// CommentRequest is the create and update payload for comments.
type CommentRequest struct {
	Content string `json:"content"`
}

// CommentService handles comment threads under posts.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	users    repository.UserRepository
}

// NewCommentService creates a new comment service.
func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, users repository.UserRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts, users: users}
}

// Create adds a comment by the given user to a post. Only the user themselves
// or an admin may comment on their behalf.
func (s *CommentService) Create(ctx context.Context, principal auth.Principal, postID, userID uint, req CommentRequest) (*models.CommentDTO, error) {
	if principal.UserID != userID && !principal.IsAdmin() {
		return nil, models.NewForbiddenError("cannot comment on behalf of another user")
	}
	if req.Content == "" {
		return nil, models.NewFieldValidationError(map[string]string{"content": "content is required"})
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", "id", userID)
	}

	comment := &models.Comment{
		Content: req.Content,
		PostID:  postID,
		UserID:  userID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "comment created", "comment_id", comment.ID, "post_id", postID)

	comment.User = *user
	dto := models.ToCommentDTO(comment)
	return &dto, nil
}

func (s *CommentService) Get(ctx context.Context, id uint) (*models.CommentDTO, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := models.ToCommentDTO(comment)
	return &dto, nil
}

// ListByPost returns all comments on a post, oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID uint) ([]models.CommentDTO, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	dtos := make([]models.CommentDTO, 0, len(comments))
	for i := range comments {
		dtos = append(dtos, models.ToCommentDTO(&comments[i]))
	}
	return dtos, nil
}

// ListByPostPaged returns one page of a post's comments.
func (s *CommentService) ListByPostPaged(ctx context.Context, postID uint, pr models.PageRequest) (*models.PageResponse[models.CommentDTO], error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, total, err := s.comments.ListByPostPaged(ctx, postID, pr)
	if err != nil {
		return nil, err
	}
	dtos := make([]models.CommentDTO, 0, len(comments))
	for i := range comments {
		dtos = append(dtos, models.ToCommentDTO(&comments[i]))
	}
	page := models.NewPageResponse(dtos, pr.Page, pr.Size, total)
	return &page, nil
}

// ListByUser returns one page of a user's comments.
func (s *CommentService) ListByUser(ctx context.Context, userID uint, pr models.PageRequest) (*models.PageResponse[models.CommentDTO], error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", "id", userID)
	}
	comments, total, err := s.comments.ListByUser(ctx, userID, pr)
	if err != nil {
		return nil, err
	}
	dtos := make([]models.CommentDTO, 0, len(comments))
	for i := range comments {
		dtos = append(dtos, models.ToCommentDTO(&comments[i]))
	}
	page := models.NewPageResponse(dtos, pr.Page, pr.Size, total)
	return &page, nil
}

// CountByPost returns the number of comments on a post.
func (s *CommentService) CountByPost(ctx context.Context, postID uint) (int64, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return 0, err
	}
	return s.comments.CountByPost(ctx, postID)
}

// Update rewrites a comment's content. Only its author or an admin may edit.
func (s *CommentService) Update(ctx context.Context, principal auth.Principal, id uint, req CommentRequest) (*models.CommentDTO, error) {
	if req.Content == "" {
		return nil, models.NewFieldValidationError(map[string]string{"content": "content is required"})
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, models.NewForbiddenError("cannot modify another user's comment")
	}

	comment.Content = req.Content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	dto := models.ToCommentDTO(comment)
	return &dto, nil
}

// Delete removes a comment. Only its author or an admin may delete it.
func (s *CommentService) Delete(ctx context.Context, principal auth.Principal, id uint) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != principal.UserID && !principal.IsAdmin() {
		return models.NewForbiddenError("cannot delete another user's comment")
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "comment deleted", "comment_id", id, "user_id", principal.UserID)
	return nil
}

// Like adds one to the comment's like counter.
func (s *CommentService) Like(ctx context.Context, id uint) (*models.CommentDTO, error) {
	if _, err := s.comments.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.comments.IncrementLikes(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Unlike removes one like; the counter never goes below zero.
func (s *CommentService) Unlike(ctx context.Context, id uint) (*models.CommentDTO, error) {
	if _, err := s.comments.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.comments.DecrementLikes(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
