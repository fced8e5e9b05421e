package service

import (
	"context"

	"zxyspace/internal/auth"
	"zxyspace/internal/cache"
	"zxyspace/internal/middleware"
	"zxyspace/internal/models"
	"zxyspace/internal/repository"
	"zxyspace/internal/validation"
)

// CreatePostRequest is the post creation payload. Tags are free-form names;
// unknown ones are created on the fly.
type CreatePostRequest struct {
	Title      string   `json:"title"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
	CoverImage string   `json:"coverImage"`
	CategoryID *uint    `json:"categoryId"`
	Tags       []string `json:"tags"`
	Published  *bool    `json:"published"`
}

// UpdatePostRequest carries a partial post update. Nil fields are left
// untouched; a non-empty Tags slice replaces the tag set wholesale, while a
// nil or empty slice leaves tags as they are.
type UpdatePostRequest struct {
	Title      *string  `json:"title"`
	Excerpt    *string  `json:"excerpt"`
	Content    *string  `json:"content"`
	CoverImage *string  `json:"coverImage"`
	CategoryID *uint    `json:"categoryId"`
	Tags       []string `json:"tags"`
	Published  *bool    `json:"published"`
}

// PostService handles post browsing, authoring and engagement counters.
type PostService struct {
	posts      repository.PostRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
	users      repository.UserRepository
}

// NewPostService creates a new post service.
func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	categories repository.CategoryRepository,
	tags repository.TagRepository,
	users repository.UserRepository,
) *PostService {
	return &PostService{
		posts:      posts,
		comments:   comments,
		categories: categories,
		tags:       tags,
		users:      users,
	}
}

func (s *PostService) toSummaries(ctx context.Context, posts []models.Post) ([]models.PostSummaryDTO, error) {
	ids := make([]uint, 0, len(posts))
	for i := range posts {
		ids = append(ids, posts[i].ID)
	}
	counts, err := s.comments.CountByPostIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.PostSummaryDTO, 0, len(posts))
	for i := range posts {
		out = append(out, models.ToPostSummaryDTO(&posts[i], counts[posts[i].ID]))
	}
	return out, nil
}

// List returns one page of published posts.
func (s *PostService) List(ctx context.Context, pr models.PageRequest) (*models.PageResponse[models.PostSummaryDTO], error) {
	posts, total, err := s.posts.ListPublished(ctx, pr)
	if err != nil {
		return nil, err
	}
	summaries, err := s.toSummaries(ctx, posts)
	if err != nil {
		return nil, err
	}
	page := models.NewPageResponse(summaries, pr.Page, pr.Size, total)
	return &page, nil
}

// Get returns the full post detail and records the view. The returned view
// count includes this read.
func (s *PostService) Get(ctx context.Context, id uint) (*models.PostDTO, error) {
	if err := s.posts.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := models.ToPostDTO(post)
	return &dto, nil
}

// ListByAuthor returns one page of an author's published posts.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uint, pr models.PageRequest) (*models.PageResponse[models.PostSummaryDTO], error) {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, models.NewNotFoundError("User", "id", authorID)
	}
	posts, total, err := s.posts.ListByAuthor(ctx, authorID, pr)
	if err != nil {
		return nil, err
	}
	summaries, err := s.toSummaries(ctx, posts)
	if err != nil {
		return nil, err
	}
	page := models.NewPageResponse(summaries, pr.Page, pr.Size, total)
	return &page, nil
}

// ListByCategory returns one page of published posts in a category.
func (s *PostService) ListByCategory(ctx context.Context, categoryID uint, pr models.PageRequest) (*models.PageResponse[models.PostSummaryDTO], error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	posts, total, err := s.posts.ListByCategory(ctx, categoryID, pr)
	if err != nil {
		return nil, err
	}
	summaries, err := s.toSummaries(ctx, posts)
	if err != nil {
		return nil, err
	}
	page := models.NewPageResponse(summaries, pr.Page, pr.Size, total)
	return &page, nil
}

// ListByTag returns one page of published posts carrying a tag. Membership
// lives in a join table, so the full set is loaded newest first and the page
// window is sliced here.
func (s *PostService) ListByTag(ctx context.Context, tagID uint, pr models.PageRequest) (*models.PageResponse[models.PostSummaryDTO], error) {
	if _, err := s.tags.GetByID(ctx, tagID); err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	total := int64(len(posts))

	start := pr.Page * pr.Size
	if start > len(posts) {
		start = len(posts)
	}
	end := start + pr.Size
	if end > len(posts) {
		end = len(posts)
	}

	summaries, err := s.toSummaries(ctx, posts[start:end])
	if err != nil {
		return nil, err
	}
	page := models.NewPageResponse(summaries, pr.Page, pr.Size, total)
	return &page, nil
}

// Search returns one page of published posts whose title or content matches
// the query, case-insensitively.
func (s *PostService) Search(ctx context.Context, query string, pr models.PageRequest) (*models.PageResponse[models.PostSummaryDTO], error) {
	posts, total, err := s.posts.Search(ctx, query, pr)
	if err != nil {
		return nil, err
	}
	summaries, err := s.toSummaries(ctx, posts)
	if err != nil {
		return nil, err
	}
	page := models.NewPageResponse(summaries, pr.Page, pr.Size, total)
	return &page, nil
}

// Recent returns the newest published posts, served from cache when warm.
func (s *PostService) Recent(ctx context.Context, limit int) ([]models.PostSummaryDTO, error) {
	var summaries []models.PostSummaryDTO
	err := cache.Aside(ctx, cache.RecentPostsKey(limit), &summaries, cache.PostListTTL, func() error {
		posts, err := s.posts.Recent(ctx, limit)
		if err != nil {
			return err
		}
		summaries, err = s.toSummaries(ctx, posts)
		return err
	})
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []models.PostSummaryDTO{}
	}
	return summaries, nil
}

// Popular returns the most viewed published posts, served from cache when warm.
func (s *PostService) Popular(ctx context.Context, limit int) ([]models.PostSummaryDTO, error) {
	var summaries []models.PostSummaryDTO
	err := cache.Aside(ctx, cache.PopularPostsKey(limit), &summaries, cache.PostListTTL, func() error {
		posts, err := s.posts.Popular(ctx, limit)
		if err != nil {
			return err
		}
		summaries, err = s.toSummaries(ctx, posts)
		return err
	})
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []models.PostSummaryDTO{}
	}
	return summaries, nil
}

// resolveTags maps tag names to entities, creating any that do not exist yet.
func (s *PostService) resolveTags(ctx context.Context, names []string) ([]models.Tag, error) {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}

	existing, err := s.tags.GetByNames(ctx, unique)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]models.Tag, len(existing))
	for _, t := range existing {
		byName[t.Name] = t
	}

	resolved := make([]models.Tag, 0, len(unique))
	for _, name := range unique {
		tag, ok := byName[name]
		if !ok {
			created := models.Tag{Name: name}
			if err := s.tags.Create(ctx, &created); err != nil {
				return nil, err
			}
			tag = created
		}
		resolved = append(resolved, tag)
	}
	return resolved, nil
}

// Create publishes a new post under the given author. Only the author
// themselves or an admin may create on their behalf.
func (s *PostService) Create(ctx context.Context, principal auth.Principal, authorID uint, req CreatePostRequest) (*models.PostDTO, error) {
	if principal.UserID != authorID && !principal.IsAdmin() {
		return nil, models.NewForbiddenError("cannot create posts for another user")
	}
	if err := validation.ValidateName(req.Title); err != nil {
		return nil, models.NewFieldValidationError(map[string]string{"title": err.Error()})
	}
	if req.Content == "" {
		return nil, models.NewFieldValidationError(map[string]string{"content": "content is required"})
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, models.NewNotFoundError("User", "id", authorID)
	}

	if req.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}
	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}

	post := &models.Post{
		Title:      req.Title,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Published:  published,
		AuthorID:   authorID,
		CategoryID: req.CategoryID,
		Tags:       tags,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	cache.InvalidatePostLists(ctx)
	middleware.Logger.InfoContext(ctx, "post created", "post_id", post.ID, "author_id", authorID)

	created, err := s.posts.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	dto := models.ToPostDTO(created)
	return &dto, nil
}

// Update applies a partial update. Only the post author or an admin may
// modify a post.
func (s *PostService) Update(ctx context.Context, principal auth.Principal, id uint, req UpdatePostRequest) (*models.PostDTO, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != principal.UserID && !principal.IsAdmin() {
		return nil, models.NewForbiddenError("cannot modify another user's post")
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.CoverImage != nil {
		post.CoverImage = *req.CoverImage
	}
	if req.Published != nil {
		post.Published = *req.Published
	}
	if req.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		post.CategoryID = req.CategoryID
	}

	var tags []models.Tag
	replaceTags := len(req.Tags) > 0
	if replaceTags {
		tags, err = s.resolveTags(ctx, req.Tags)
		if err != nil {
			return nil, err
		}
	}

	if err := s.posts.Update(ctx, post, tags, replaceTags); err != nil {
		return nil, err
	}
	cache.InvalidatePostLists(ctx)

	updated, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := models.ToPostDTO(updated)
	return &dto, nil
}

// Delete removes a post with its comments. Only the post author or an admin
// may delete it.
func (s *PostService) Delete(ctx context.Context, principal auth.Principal, id uint) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != principal.UserID && !principal.IsAdmin() {
		return models.NewForbiddenError("cannot delete another user's post")
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidatePostLists(ctx)
	middleware.Logger.InfoContext(ctx, "post deleted", "post_id", id, "user_id", principal.UserID)
	return nil
}

// View records an explicit view and returns the updated detail.
func (s *PostService) View(ctx context.Context, id uint) (*models.PostDTO, error) {
	return s.Get(ctx, id)
}

// Like adds one to the post's like counter.
func (s *PostService) Like(ctx context.Context, id uint) (*models.PostDTO, error) {
	if _, err := s.posts.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.posts.IncrementLikes(ctx, id); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := models.ToPostDTO(post)
	return &dto, nil
}

// Unlike removes one like; the counter never goes below zero.
func (s *PostService) Unlike(ctx context.Context, id uint) (*models.PostDTO, error) {
	if _, err := s.posts.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.posts.DecrementLikes(ctx, id); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := models.ToPostDTO(post)
	return &dto, nil
}
