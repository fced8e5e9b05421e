// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"zxyspace/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var categoryNames = []string{
	"Technology", "Programming", "Travel", "Food", "Music",
	"Books", "Science", "Lifestyle", "Gaming", "Photography",
}

var tagNames = []string{
	"go", "java", "databases", "web", "cloud", "linux", "devops",
	"tutorial", "opinion", "review", "beginners", "performance",
	"security", "frontend", "backend", "career",
}

// Seeder populates the database with fake content.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll wipes all seeded content. Order matters with foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing database...")
	for _, stmt := range []string{
		"DELETE FROM comments",
		"DELETE FROM post_tags",
		"DELETE FROM posts",
		"DELETE FROM tags",
		"DELETE FROM categories",
		"DELETE FROM users",
	} {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}
	return nil
}

// Seed creates users, taxonomy, posts and comments. Every seeded user logs in
// with the password "password123".
func (s *Seeder) Seed(numUsers, numPosts int) error {
	users, err := s.seedUsers(numUsers)
	if err != nil {
		return err
	}
	categories, err := s.seedCategories()
	if err != nil {
		return err
	}
	tags, err := s.seedTags()
	if err != nil {
		return err
	}
	posts, err := s.seedPosts(numPosts, users, categories, tags)
	if err != nil {
		return err
	}
	if err := s.seedComments(posts, users); err != nil {
		return err
	}

	log.Printf("Seeded %d users, %d categories, %d tags, %d posts",
		len(users), len(categories), len(tags), len(posts))
	return nil
}

func (s *Seeder) seedUsers(n int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()
		user := models.User{
			Username:  fmt.Sprintf("%s_%s%d", first, last, i),
			Email:     fmt.Sprintf("%s.%s%d@%s", first, last, i, gofakeit.DomainName()),
			Password:  string(hash),
			FirstName: first,
			LastName:  last,
			Bio:       gofakeit.Sentence(10),
			AvatarURL: fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
			Role:      models.RoleUser,
		}
		if i == 0 {
			user.Role = models.RoleAdmin
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedCategories() ([]models.Category, error) {
	categories := make([]models.Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		category := models.Category{Name: name, Description: gofakeit.Sentence(8)}
		if err := s.db.Create(&category).Error; err != nil {
			return nil, fmt.Errorf("seed category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func (s *Seeder) seedTags() ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(tagNames))
	for _, name := range tagNames {
		tag := models.Tag{Name: name}
		if err := s.db.Create(&tag).Error; err != nil {
			return nil, fmt.Errorf("seed tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (s *Seeder) seedPosts(n int, users []models.User, categories []models.Category, tags []models.Tag) ([]models.Post, error) {
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.rng.Intn(len(users))]
		category := categories[s.rng.Intn(len(categories))]

		postTags := make([]models.Tag, 0, 3)
		for _, idx := range s.rng.Perm(len(tags))[:1+s.rng.Intn(3)] {
			postTags = append(postTags, tags[idx])
		}

		post := models.Post{
			Title:      gofakeit.Sentence(5),
			Excerpt:    gofakeit.Sentence(12),
			Content:    gofakeit.Paragraph(3, 5, 10, "\n\n"),
			CoverImage: fmt.Sprintf("https://picsum.photos/seed/%s/1200/600", gofakeit.UUID()),
			Published:  s.rng.Intn(10) > 0,
			Views:      s.rng.Intn(5000),
			Likes:      s.rng.Intn(300),
			AuthorID:   author.ID,
			CategoryID: &category.ID,
			Tags:       postTags,
		}
		// realistic created_at spread over the last 90 days
		post.CreatedAt = time.Now().Add(-time.Duration(s.rng.Intn(90*24)) * time.Hour)

		if err := s.db.Create(&post).Error; err != nil {
			return nil, fmt.Errorf("seed post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedComments(posts []models.Post, users []models.User) error {
	for _, post := range posts {
		for i := 0; i < s.rng.Intn(8); i++ {
			comment := models.Comment{
				Content: gofakeit.Sentence(8 + s.rng.Intn(15)),
				Likes:   s.rng.Intn(30),
				PostID:  post.ID,
				UserID:  users[s.rng.Intn(len(users))].ID,
			}
			comment.CreatedAt = post.CreatedAt.Add(time.Duration(1+s.rng.Intn(72)) * time.Hour)
			if err := s.db.Create(&comment).Error; err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
		}
	}
	return nil
}
