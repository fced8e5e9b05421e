package service

import (
	"context"
	"testing"
	"time"

	"zxyspace/internal/auth"
	"zxyspace/internal/database"
	"zxyspace/internal/models"
	"zxyspace/internal/repository"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db         *gorm.DB
	users      *UserService
	posts      *PostService
	comments   *CommentService
	categories *CategoryService
	tags       *TagService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tagRepo := repository.NewTagRepository(db)

	tokens := auth.NewTokenService("service-test-secret", time.Hour)

	return &testEnv{
		db:         db,
		users:      NewUserService(userRepo, tokens),
		posts:      NewPostService(postRepo, commentRepo, categoryRepo, tagRepo, userRepo),
		comments:   NewCommentService(commentRepo, postRepo, userRepo),
		categories: NewCategoryService(categoryRepo),
		tags:       NewTagService(tagRepo),
	}
}

func (e *testEnv) createUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		Role:     role,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func principalFor(u *models.User) auth.Principal {
	return auth.Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func (e *testEnv) createPost(t *testing.T, author *models.User, title string, tags []string) *models.PostDTO {
	t.Helper()
	post, err := e.posts.Create(context.Background(), principalFor(author), author.ID, CreatePostRequest{
		Title:   title,
		Content: "content of " + title,
		Tags:    tags,
	})
	require.NoError(t, err)
	return post
}
