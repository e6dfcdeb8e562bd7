package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/conorfennell/wordcards/internal/domain"
	"github.com/conorfennell/wordcards/internal/srs"
)

// InsertReviewLog appends a review event.
func (db *DB) InsertReviewLog(ctx context.Context, log domain.ReviewLog) error {
	return insertReviewLog(ctx, db.conn, log)
}

func insertReviewLog(ctx context.Context, e sqlx.ExecerContext, log domain.ReviewLog) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO review_logs (card_id, user_id, reviewed_at, quality, interval, ease_factor)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		log.CardID,
		log.UserID,
		dbTime(log.ReviewedAt),
		int(log.Quality),
		log.Interval,
		log.EaseFactor,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review log for card %s: %w", log.CardID, err)
	}
	return nil
}

// ReviewLogs returns the review history of a card, oldest first.
func (db *DB) ReviewLogs(ctx context.Context, userID, cardID string) ([]domain.ReviewLog, error) {
	var rows []struct {
		CardID     string    `db:"card_id"`
		UserID     string    `db:"user_id"`
		ReviewedAt time.Time `db:"reviewed_at"`
		Quality    int       `db:"quality"`
		Interval   int       `db:"interval"`
		EaseFactor float64   `db:"ease_factor"`
	}
	err := db.conn.SelectContext(ctx, &rows, `
		SELECT card_id, user_id, reviewed_at, quality, interval, ease_factor
		FROM review_logs WHERE card_id = ? AND user_id = ?
		ORDER BY reviewed_at ASC, id ASC
	`, cardID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review logs for card %s: %w", cardID, err)
	}

	logs := make([]domain.ReviewLog, 0, len(rows))
	for _, r := range rows {
		logs = append(logs, domain.ReviewLog{
			CardID:     r.CardID,
			UserID:     r.UserID,
			ReviewedAt: r.ReviewedAt.UTC(),
			Quality:    srs.Quality(r.Quality),
			Interval:   r.Interval,
			EaseFactor: r.EaseFactor,
		})
	}
	return logs, nil
}
