package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/wordcards/internal/domain"
)

type sourceRow struct {
	ID             int64        `db:"id"`
	UserID         string       `db:"user_id"`
	Path           string       `db:"path"`
	Type           string       `db:"type"`
	TargetLanguage string       `db:"target_language"`
	LastScanned    sql.NullTime `db:"last_scanned"`
}

func (r sourceRow) toSource() domain.Source {
	return domain.Source{
		ID:             r.ID,
		UserID:         r.UserID,
		Path:           r.Path,
		Type:           r.Type,
		TargetLanguage: r.TargetLanguage,
		LastScanned:    nullTimePtr(r.LastScanned),
	}
}

// InsertSource inserts a new source and returns its ID.
func (db *DB) InsertSource(ctx context.Context, src domain.Source) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO sources (user_id, path, type, target_language)
		VALUES (?, ?, ?, ?)
	`, src.UserID, src.Path, src.Type, src.TargetLanguage)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateSource
		}
		return 0, fmt.Errorf("failed to insert source %s: %w", src.Path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for source %s: %w", src.Path, err)
	}
	return id, nil
}

// GetSource retrieves a single source owned by userID.
func (db *DB) GetSource(ctx context.Context, userID string, id int64) (domain.Source, error) {
	var row sourceRow
	err := db.conn.GetContext(ctx, &row, `
		SELECT id, user_id, path, type, target_language, last_scanned
		FROM sources WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Source{}, ErrNotFound
		}
		return domain.Source{}, fmt.Errorf("failed to find source %d: %w", id, err)
	}
	return row.toSource(), nil
}

// GetSources retrieves the sources of one user.
func (db *DB) GetSources(ctx context.Context, userID string) ([]domain.Source, error) {
	return db.selectSources(ctx, `
		SELECT id, user_id, path, type, target_language, last_scanned
		FROM sources WHERE user_id = ? ORDER BY id
	`, userID)
}

// AllSources retrieves every stored source.
func (db *DB) AllSources(ctx context.Context) ([]domain.Source, error) {
	return db.selectSources(ctx, `
		SELECT id, user_id, path, type, target_language, last_scanned
		FROM sources ORDER BY id
	`)
}

func (db *DB) selectSources(ctx context.Context, query string, args ...any) ([]domain.Source, error) {
	var rows []sourceRow
	if err := db.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}
	sources := make([]domain.Source, 0, len(rows))
	for _, r := range rows {
		sources = append(sources, r.toSource())
	}
	return sources, nil
}

// DeleteSource removes a source. Cards imported from it are kept.
func (db *DB) DeleteSource(ctx context.Context, userID string, id int64) error {
	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM sources
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete source %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete source %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSourceLastScanned updates the last_scanned timestamp for a source.
func (db *DB) UpdateSourceLastScanned(ctx context.Context, sourceID int64, at time.Time) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE sources
		SET last_scanned = ?
		WHERE id = ?
	`, dbTime(at), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update last scanned for source ID %d: %w", sourceID, err)
	}
	return nil
}
