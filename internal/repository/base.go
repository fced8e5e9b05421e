// Package repository provides data access layer implementations for the application.
package repository

import (
	"strings"

	"zxyspace/internal/models"

	"gorm.io/gorm"
)

// sortColumns is the allowlist mapping API sort field names to columns.
// Anything outside it falls back to created_at, which keeps user-supplied
// sort fields out of SQL.
var sortColumns = map[string]string{
	"id":        "id",
	"title":     "title",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"views":     "views",
	"likes":     "likes",
}

// orderClause builds the ORDER BY expression for a page request. The sort
// direction is "desc" compared case-insensitively; anything else is ascending.
func orderClause(pr models.PageRequest) string {
	col, ok := sortColumns[pr.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if strings.EqualFold(pr.SortDir, "desc") {
		dir = "DESC"
	}
	return col + " " + dir
}

// paged applies ordering, offset and limit for a zero-based page request.
func paged(db *gorm.DB, pr models.PageRequest) *gorm.DB {
	return db.Order(orderClause(pr)).
		Offset(pr.Page * pr.Size).
		Limit(pr.Size)
}
