// Package deck holds the card operations shared by the HTTP API and the
// source sync: adding words, listing, reviewing and deleting cards.
package deck

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/conorfennell/wordcards/internal/domain"
	"github.com/conorfennell/wordcards/internal/fingerprint"
	"github.com/conorfennell/wordcards/internal/generator"
	"github.com/conorfennell/wordcards/internal/srs"
	"github.com/conorfennell/wordcards/internal/storage"
)

var (
	ErrEmptyWord     = errors.New("deck: word must not be empty")
	ErrEmptyLanguage = errors.New("deck: target language must not be empty")
	ErrGeneration    = errors.New("deck: content generation failed")
)

// Service ties the card store, the AI generator and the scheduler together.
type Service struct {
	store     *storage.DB
	generator generator.Generator
	scheduler *srs.Scheduler
}

// NewService creates a card service.
func NewService(store *storage.DB, gen generator.Generator, scheduler *srs.Scheduler) *Service {
	return &Service{store: store, generator: gen, scheduler: scheduler}
}

// AddWord generates content for a word and stores it as a new card that is
// due immediately. sourceID is nil for words added by hand.
func (s *Service) AddWord(ctx context.Context, userID, word, targetLanguage string, sourceID *int64) (domain.Card, error) {
	word = strings.TrimSpace(word)
	targetLanguage = strings.TrimSpace(targetLanguage)
	if word == "" {
		return domain.Card{}, ErrEmptyWord
	}
	if targetLanguage == "" {
		return domain.Card{}, ErrEmptyLanguage
	}

	fp := fingerprint.Hash(userID, word, targetLanguage)
	// Check before generating so duplicates cost no AI call.
	if _, err := s.store.FindCardByFingerprint(ctx, userID, fp); err == nil {
		return domain.Card{}, storage.ErrDuplicateCard
	} else if !errors.Is(err, storage.ErrNotFound) {
		return domain.Card{}, err
	}

	generated, err := s.generator.GenerateCard(ctx, word, targetLanguage)
	if err != nil {
		return domain.Card{}, fmt.Errorf("%w for %q: %w", ErrGeneration, word, err)
	}
	generated.Word = word
	generated.TargetLanguage = targetLanguage

	now := s.scheduler.Now()
	card := domain.Card{
		ID:          uuid.NewString(),
		UserID:      userID,
		Fingerprint: fp,
		SourceID:    sourceID,
		CreatedAt:   now,
		Generated:   generated,
	}
	card.SetReviewState(srs.NewReviewState(now))

	if err := s.store.SaveCard(ctx, card); err != nil {
		return domain.Card{}, err
	}
	log.Info().Str("user", userID).Str("card", card.ID).Str("word", word).Msg("card added")
	return card, nil
}

// Cards lists every card of a user, newest first.
func (s *Service) Cards(ctx context.Context, userID string) ([]domain.Card, error) {
	return s.store.ListCards(ctx, userID)
}

// DueCards lists the cards due for review now.
func (s *Service) DueCards(ctx context.Context, userID string) ([]domain.Card, error) {
	return s.store.DueCards(ctx, userID, s.scheduler.Now())
}

// Card returns a single card.
func (s *Service) Card(ctx context.Context, userID, cardID string) (domain.Card, error) {
	return s.store.GetCard(ctx, userID, cardID)
}

// DeleteCard removes a card and its review history.
func (s *Service) DeleteCard(ctx context.Context, userID, cardID string) error {
	if err := s.store.DeleteCard(ctx, userID, cardID); err != nil {
		return err
	}
	log.Info().Str("user", userID).Str("card", cardID).Msg("card deleted")
	return nil
}

// Review grades a card and persists the scheduler's output. Grades outside
// Again..Easy are rejected before anything is read or written.
func (s *Service) Review(ctx context.Context, userID, cardID string, quality srs.Quality) (domain.Card, error) {
	if !quality.IsValid() {
		return domain.Card{}, fmt.Errorf("%w: %d", srs.ErrInvalidQuality, int(quality))
	}

	card, err := s.store.UpdateReview(ctx, userID, cardID, func(c domain.Card) (domain.Card, *domain.ReviewLog, error) {
		next, err := s.scheduler.Review(c.ReviewState(), quality)
		if err != nil {
			return c, nil, err
		}
		c.SetReviewState(next)
		return c, &domain.ReviewLog{
			CardID:     c.ID,
			UserID:     userID,
			ReviewedAt: *next.LastReviewed,
			Quality:    quality,
			Interval:   next.Interval,
			EaseFactor: next.EaseFactor,
		}, nil
	})
	if err != nil {
		return domain.Card{}, err
	}

	log.Debug().
		Str("user", userID).
		Str("card", card.ID).
		Stringer("quality", quality).
		Int("interval", card.Interval).
		Float64("ease", card.EaseFactor).
		Str("phase", string(srs.PhaseOf(card.Interval))).
		Msg("card reviewed")
	return card, nil
}

// ReviewLogs returns a card's review history, oldest first.
func (s *Service) ReviewLogs(ctx context.Context, userID, cardID string) ([]domain.ReviewLog, error) {
	if _, err := s.store.GetCard(ctx, userID, cardID); err != nil {
		return nil, err
	}
	return s.store.ReviewLogs(ctx, userID, cardID)
}

// Summarize asks the generator for feedback on a finished review session.
func (s *Service) Summarize(ctx context.Context, struggled []string, totalReviewed int) (string, error) {
	summary, err := s.generator.SummarizeSession(ctx, struggled, totalReviewed)
	if err != nil {
		return "", fmt.Errorf("%w: session summary: %w", ErrGeneration, err)
	}
	return summary, nil
}
