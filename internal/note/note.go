// Package note provides plain CRUD for study notes.
package note

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mshibata/studyledger/internal/database"
)

// ErrNotFound is returned when a note does not exist or is owned by another
// user.
var ErrNotFound = errors.New("note not found")

// Note is a free-form study note.
type Note struct {
	ID        string              `db:"id" json:"id"`
	UserID    string              `db:"user_id" json:"-"`
	Title     string              `db:"title" json:"title"`
	Content   string              `db:"content" json:"content,omitempty"`
	Category  string              `db:"category" json:"category,omitempty"`
	Tags      database.StringList `db:"tags" json:"tags,omitempty"`
	Pinned    bool                `db:"pinned" json:"pinned"`
	Archived  bool                `db:"archived" json:"archived"`
	CreatedAt time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time           `db:"updated_at" json:"updatedAt"`
}

// SearchParams filter and paginate note listings.
type SearchParams struct {
	Query    string
	Category string
	Archived bool
	Limit    int
	Offset   int
}

// Repository defines operations for managing notes.
type Repository interface {
	Create(ctx context.Context, note *Note) error
	FindByID(ctx context.Context, userID, id string) (*Note, error)
	Search(ctx context.Context, userID string, params SearchParams) ([]Note, error)
	Update(ctx context.Context, note *Note) error
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

// Create inserts a note.
func (r *DBRepository) Create(ctx context.Context, note *Note) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (id, user_id, title, content, category, tags, pinned, archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.UserID, note.Title, note.Content, note.Category,
		note.Tags, note.Pinned, note.Archived)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// FindByID returns a note, or nil if not found.
func (r *DBRepository) FindByID(ctx context.Context, userID, id string) (*Note, error) {
	var note Note
	err := sqlx.GetContext(ctx, r.db, &note,
		"SELECT * FROM notes WHERE id = ? AND user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select note: %w", err)
	}
	return &note, nil
}

// Search returns notes matching the filters, pinned first, most recently
// updated first within each group.
func (r *DBRepository) Search(ctx context.Context, userID string, params SearchParams) ([]Note, error) {
	query := "SELECT * FROM notes WHERE user_id = ? AND archived = ?"
	args := []any{userID, params.Archived}
	if params.Query != "" {
		query += " AND (title LIKE ? OR content LIKE ?)"
		pattern := "%" + params.Query + "%"
		args = append(args, pattern, pattern)
	}
	if params.Category != "" {
		query += " AND category = ?"
		args = append(args, params.Category)
	}
	query += " ORDER BY pinned DESC, updated_at DESC LIMIT ? OFFSET ?"
	args = append(args, normalizeLimit(params.Limit), max(0, params.Offset))

	var notes []Note
	if err := sqlx.SelectContext(ctx, r.db, &notes, query, args...); err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	return notes, nil
}

// Update rewrites a note.
func (r *DBRepository) Update(ctx context.Context, note *Note) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, category = ?, tags = ?, pinned = ?, archived = ?
		WHERE id = ? AND user_id = ?`,
		note.Title, note.Content, note.Category, note.Tags, note.Pinned,
		note.Archived, note.ID, note.UserID)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes a note.
func (r *DBRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM notes WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
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
