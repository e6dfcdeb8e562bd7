package domain

import (
	"time"

	"github.com/conorfennell/wordcards/internal/srs"
)

// ExampleSentence is a usage example in the target language with its
// English translation.
type ExampleSentence struct {
	Sentence    string `json:"sentence"`
	Translation string `json:"translation"`
}

// Generated is what the AI collaborator produces for a word.
type Generated struct {
	Word             string            `json:"word"`
	TargetLanguage   string            `json:"targetLanguage"`
	Translation      string            `json:"translation,omitempty"`
	ExampleSentences []ExampleSentence `json:"exampleSentences,omitempty"`
	ImageURL         string            `json:"imageUrl,omitempty"`
}

// Card is a vocabulary card owned by a single user.
type Card struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Fingerprint string    `json:"-"`
	SourceID    *int64    `json:"sourceId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Generated

	Interval       int        `json:"interval"`
	EaseFactor     float64    `json:"easeFactor"`
	LastReviewed   *time.Time `json:"lastReviewed"`
	NextReviewDate time.Time  `json:"nextReviewDate"`
}

// ReviewState extracts the scheduling fields of the card.
func (c Card) ReviewState() srs.ReviewState {
	return srs.ReviewState{
		Interval:       c.Interval,
		EaseFactor:     c.EaseFactor,
		LastReviewed:   c.LastReviewed,
		NextReviewDate: c.NextReviewDate,
	}
}

// SetReviewState copies scheduling fields back onto the card.
func (c *Card) SetReviewState(rs srs.ReviewState) {
	c.Interval = rs.Interval
	c.EaseFactor = rs.EaseFactor
	c.LastReviewed = rs.LastReviewed
	c.NextReviewDate = rs.NextReviewDate
}

// ReviewLog records a single review event for a card.
type ReviewLog struct {
	CardID     string      `json:"cardId"`
	UserID     string      `json:"userId"`
	ReviewedAt time.Time   `json:"reviewedAt"`
	Quality    srs.Quality `json:"quality"`
	Interval   int         `json:"interval"`
	EaseFactor float64     `json:"easeFactor"`
}
