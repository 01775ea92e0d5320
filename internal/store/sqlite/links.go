package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/hop/internal/domain"
	"github.com/MrSnakeDoc/hop/internal/utils"
)

// LoadLocal reads the whole local store in its saved order.
func (db *DB) LoadLocal(ctx context.Context) (*domain.Store, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, url, description, created_at, last_accessed_at, num_accessed, deleted_at
		FROM links
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer utils.Close(rows)

	store := domain.NewStore()
	for rows.Next() {
		var (
			l                 domain.Link
			created           string
			accessed, deleted sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.URL, &l.Description, &created, &accessed, &l.NumAccessed, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		l.CreatedAt = parseTime(created)
		l.LastAccessedAt = parseNullTime(accessed)
		l.DeletedAt = parseNullTime(deleted)
		store.Put(l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read links: %w", err)
	}

	return store, nil
}

// SaveLocal replaces the local store with store, atomically.
func (db *DB) SaveLocal(ctx context.Context, store *domain.Store) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM links`); err != nil {
		return fmt.Errorf("failed to clear links: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO links (id, position, url, description, created_at, last_accessed_at, num_accessed, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer utils.Close(stmt)

	for i, l := range store.Links() {
		if _, err := stmt.ExecContext(ctx,
			l.ID, i, l.URL, l.Description,
			formatTime(l.CreatedAt), formatNullTime(l.LastAccessedAt),
			l.NumAccessed, formatNullTime(l.DeletedAt),
		); err != nil {
			return fmt.Errorf("failed to insert link %s: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit links: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

// parseTime maps unreadable values to the zero time, like the JSON decoder.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
