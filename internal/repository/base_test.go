package repository

import (
	"testing"

	"zxyspace/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a GORM *gorm.DB backed by sqlmock for unit tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		name     string
		pr       models.PageRequest
		expected string
	}{
		{"default descending", models.PageRequest{SortBy: "createdAt", SortDir: "desc"}, "created_at DESC"},
		{"ascending", models.PageRequest{SortBy: "title", SortDir: "asc"}, "title ASC"},
		{"case-insensitive direction", models.PageRequest{SortBy: "views", SortDir: "DESC"}, "views DESC"},
		{"unknown direction is ascending", models.PageRequest{SortBy: "likes", SortDir: "sideways"}, "likes ASC"},
		{"unknown column falls back", models.PageRequest{SortBy: "password; DROP TABLE users", SortDir: "desc"}, "created_at DESC"},
		{"empty request", models.PageRequest{}, "created_at ASC"},
		{"updatedAt maps to column", models.PageRequest{SortBy: "updatedAt", SortDir: "desc"}, "updated_at DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, orderClause(tt.pr))
		})
	}
}
