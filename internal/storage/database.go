package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/conorfennell/wordcards/internal/domain"
)

var (
	ErrNotFound        = errors.New("storage: not found")
	ErrDuplicateCard   = errors.New("storage: card already exists for this word")
	ErrDuplicateSource = errors.New("storage: source already registered")
)

// timeLayout is how timestamps are written. Everything is stored in UTC at
// second precision so that text comparison in SQL orders correctly.
const timeLayout = "2006-01-02 15:04:05"

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sqlx.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer, and ":memory:" databases live per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func dbTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(timeLayout)
}

func dbNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: dbTime(*t), Valid: true}
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

type cardRow struct {
	ID               string        `db:"id"`
	UserID           string        `db:"user_id"`
	Fingerprint      string        `db:"fingerprint"`
	Word             string        `db:"word"`
	TargetLanguage   string        `db:"target_language"`
	Translation      string        `db:"translation"`
	ExampleSentences string        `db:"example_sentences"`
	ImageURL         string        `db:"image_url"`
	CreatedAt        time.Time     `db:"created_at"`
	LastReviewed     sql.NullTime  `db:"last_reviewed"`
	NextReviewDate   time.Time     `db:"next_review_date"`
	Interval         int           `db:"interval"`
	EaseFactor       float64       `db:"ease_factor"`
	SourceID         sql.NullInt64 `db:"source_id"`
}

const cardColumns = `id, user_id, fingerprint, word, target_language, translation, example_sentences,
	image_url, created_at, last_reviewed, next_review_date, interval, ease_factor, source_id`

func (r cardRow) toCard() (domain.Card, error) {
	var sentences []domain.ExampleSentence
	if r.ExampleSentences != "" {
		if err := json.Unmarshal([]byte(r.ExampleSentences), &sentences); err != nil {
			return domain.Card{}, fmt.Errorf("failed to decode example sentences for card %s: %w", r.ID, err)
		}
	}
	card := domain.Card{
		ID:          r.ID,
		UserID:      r.UserID,
		Fingerprint: r.Fingerprint,
		CreatedAt:   r.CreatedAt.UTC(),
		Generated: domain.Generated{
			Word:             r.Word,
			TargetLanguage:   r.TargetLanguage,
			Translation:      r.Translation,
			ExampleSentences: sentences,
			ImageURL:         r.ImageURL,
		},
		Interval:       r.Interval,
		EaseFactor:     r.EaseFactor,
		LastReviewed:   nullTimePtr(r.LastReviewed),
		NextReviewDate: r.NextReviewDate.UTC(),
	}
	if r.SourceID.Valid {
		id := r.SourceID.Int64
		card.SourceID = &id
	}
	return card, nil
}

func toCards(rows []cardRow) ([]domain.Card, error) {
	cards := make([]domain.Card, 0, len(rows))
	for _, r := range rows {
		c, err := r.toCard()
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// SaveCard inserts a new card. A second card with the same fingerprint for
// the same user is rejected with ErrDuplicateCard.
func (db *DB) SaveCard(ctx context.Context, card domain.Card) error {
	sentences, err := json.Marshal(card.ExampleSentences)
	if err != nil {
		return fmt.Errorf("failed to encode example sentences for card %s: %w", card.ID, err)
	}
	if card.ExampleSentences == nil {
		sentences = []byte("[]")
	}
	var sourceID sql.NullInt64
	if card.SourceID != nil {
		sourceID = sql.NullInt64{Int64: *card.SourceID, Valid: true}
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		card.ID,
		card.UserID,
		card.Fingerprint,
		card.Word,
		card.TargetLanguage,
		card.Translation,
		string(sentences),
		card.ImageURL,
		dbTime(card.CreatedAt),
		dbNullTime(card.LastReviewed),
		dbTime(card.NextReviewDate),
		card.Interval,
		card.EaseFactor,
		sourceID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCard
		}
		return fmt.Errorf("failed to insert card %s: %w", card.ID, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetCard retrieves a card owned by userID.
func (db *DB) GetCard(ctx context.Context, userID, cardID string) (domain.Card, error) {
	return getCard(ctx, db.conn, userID, cardID)
}

func getCard(ctx context.Context, q sqlx.QueryerContext, userID, cardID string) (domain.Card, error) {
	var row cardRow
	err := sqlx.GetContext(ctx, q, &row, `
		SELECT `+cardColumns+`
		FROM cards WHERE id = ? AND user_id = ?
	`, cardID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Card{}, ErrNotFound
		}
		return domain.Card{}, fmt.Errorf("failed to find card %s: %w", cardID, err)
	}
	return row.toCard()
}

// FindCardByFingerprint returns the user's card for a fingerprint, or
// ErrNotFound.
func (db *DB) FindCardByFingerprint(ctx context.Context, userID, fingerprint string) (domain.Card, error) {
	var row cardRow
	err := db.conn.GetContext(ctx, &row, `
		SELECT `+cardColumns+`
		FROM cards WHERE user_id = ? AND fingerprint = ?
	`, userID, fingerprint)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Card{}, ErrNotFound
		}
		return domain.Card{}, fmt.Errorf("failed to find card by fingerprint: %w", err)
	}
	return row.toCard()
}

// ListCards returns all cards of a user, newest first.
func (db *DB) ListCards(ctx context.Context, userID string) ([]domain.Card, error) {
	var rows []cardRow
	err := db.conn.SelectContext(ctx, &rows, `
		SELECT `+cardColumns+`
		FROM cards WHERE user_id = ?
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards for user %s: %w", userID, err)
	}
	return toCards(rows)
}

// DueCards returns the user's cards whose next review date is at or before
// now, the longest overdue first.
func (db *DB) DueCards(ctx context.Context, userID string, now time.Time) ([]domain.Card, error) {
	var rows []cardRow
	err := db.conn.SelectContext(ctx, &rows, `
		SELECT `+cardColumns+`
		FROM cards WHERE user_id = ? AND next_review_date <= ?
		ORDER BY next_review_date ASC, created_at ASC
	`, userID, dbTime(now))
	if err != nil {
		return nil, fmt.Errorf("failed to get due cards for user %s: %w", userID, err)
	}
	return toCards(rows)
}

// UpdateReview reads a card, lets fn compute its new state and writes the
// review fields back, all in one transaction. A non-nil entry returned by fn
// is appended to the review log in the same transaction, so the schedule and
// its history change together. Concurrent reviews of the same card are
// applied one after the other.
func (db *DB) UpdateReview(ctx context.Context, userID, cardID string, fn func(domain.Card) (domain.Card, *domain.ReviewLog, error)) (domain.Card, error) {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Card{}, fmt.Errorf("failed to begin review update: %w", err)
	}
	defer tx.Rollback()

	card, err := getCard(ctx, tx, userID, cardID)
	if err != nil {
		return domain.Card{}, err
	}

	updated, entry, err := fn(card)
	if err != nil {
		return domain.Card{}, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE cards
		SET interval = ?, ease_factor = ?, last_reviewed = ?, next_review_date = ?
		WHERE id = ? AND user_id = ?
	`,
		updated.Interval,
		updated.EaseFactor,
		dbNullTime(updated.LastReviewed),
		dbTime(updated.NextReviewDate),
		cardID,
		userID,
	)
	if err != nil {
		return domain.Card{}, fmt.Errorf("failed to update review state for card %s: %w", cardID, err)
	}

	if entry != nil {
		if err := insertReviewLog(ctx, tx, *entry); err != nil {
			return domain.Card{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Card{}, fmt.Errorf("failed to commit review update for card %s: %w", cardID, err)
	}
	return updated, nil
}

// DeleteCard removes a card owned by userID.
func (db *DB) DeleteCard(ctx context.Context, userID, cardID string) error {
	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM cards
		WHERE id = ? AND user_id = ?
	`, cardID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete card %s: %w", cardID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete card %s: %w", cardID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CardsBySource retrieves all cards imported from a source.
func (db *DB) CardsBySource(ctx context.Context, sourceID int64) ([]domain.Card, error) {
	var rows []cardRow
	err := db.conn.SelectContext(ctx, &rows, `
		SELECT `+cardColumns+`
		FROM cards WHERE source_id = ?
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for source ID %d: %w", sourceID, err)
	}
	return toCards(rows)
}
