// Package resource provides plain CRUD for study resources.
package resource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mshibata/studyledger/internal/database"
)

// ErrNotFound is returned when a resource does not exist or is owned by
// another user.
var ErrNotFound = errors.New("resource not found")

// Resource is a link or file reference attached to a user's study material.
type Resource struct {
	ID        string              `db:"id" json:"id"`
	UserID    string              `db:"user_id" json:"-"`
	Title     string              `db:"title" json:"title"`
	URL       string              `db:"url" json:"url,omitempty"`
	Category  string              `db:"category" json:"category,omitempty"`
	Tags      database.StringList `db:"tags" json:"tags,omitempty"`
	Favorite  bool                `db:"favorite" json:"favorite"`
	Archived  bool                `db:"archived" json:"archived"`
	CreatedAt time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time           `db:"updated_at" json:"updatedAt"`
}

// SearchParams filter and paginate resource listings.
type SearchParams struct {
	Query    string
	Category string
	Favorite *bool
	Archived bool
	Limit    int
	Offset   int
}

// Repository defines operations for managing resources.
type Repository interface {
	Create(ctx context.Context, resource *Resource) error
	FindByID(ctx context.Context, userID, id string) (*Resource, error)
	Search(ctx context.Context, userID string, params SearchParams) ([]Resource, error)
	Update(ctx context.Context, resource *Resource) error
	Delete(ctx context.Context, userID, id string) error
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db sqlx.ExtContext
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db sqlx.ExtContext) *DBRepository {
	return &DBRepository{db: db}
}

// Create inserts a resource.
func (r *DBRepository) Create(ctx context.Context, resource *Resource) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO resources (id, user_id, title, url, category, tags, favorite, archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		resource.ID, resource.UserID, resource.Title, resource.URL,
		resource.Category, resource.Tags, resource.Favorite, resource.Archived)
	if err != nil {
		return fmt.Errorf("insert resource: %w", err)
	}
	return nil
}

// FindByID returns a resource, or nil if not found.
func (r *DBRepository) FindByID(ctx context.Context, userID, id string) (*Resource, error) {
	var resource Resource
	err := sqlx.GetContext(ctx, r.db, &resource,
		"SELECT * FROM resources WHERE id = ? AND user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select resource: %w", err)
	}
	return &resource, nil
}

// Search returns resources matching the filters, favorites first.
func (r *DBRepository) Search(ctx context.Context, userID string, params SearchParams) ([]Resource, error) {
	query := "SELECT * FROM resources WHERE user_id = ? AND archived = ?"
	args := []any{userID, params.Archived}
	if params.Query != "" {
		query += " AND (title LIKE ? OR url LIKE ?)"
		pattern := "%" + params.Query + "%"
		args = append(args, pattern, pattern)
	}
	if params.Category != "" {
		query += " AND category = ?"
		args = append(args, params.Category)
	}
	if params.Favorite != nil {
		query += " AND favorite = ?"
		args = append(args, *params.Favorite)
	}
	query += " ORDER BY favorite DESC, updated_at DESC LIMIT ? OFFSET ?"
	args = append(args, normalizeLimit(params.Limit), max(0, params.Offset))

	var resources []Resource
	if err := sqlx.SelectContext(ctx, r.db, &resources, query, args...); err != nil {
		return nil, fmt.Errorf("search resources: %w", err)
	}
	return resources, nil
}

// Update rewrites a resource.
func (r *DBRepository) Update(ctx context.Context, resource *Resource) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE resources SET title = ?, url = ?, category = ?, tags = ?, favorite = ?, archived = ?
		WHERE id = ? AND user_id = ?`,
		resource.Title, resource.URL, resource.Category, resource.Tags,
		resource.Favorite, resource.Archived, resource.ID, resource.UserID)
	if err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes a resource.
func (r *DBRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM resources WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return requireRowAffected(result)
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
