package srs

import "time"

// ReviewState is the scheduling state persisted with each card.
type ReviewState struct {
	Interval       int
	EaseFactor     float64
	LastReviewed   *time.Time // nil until the first review
	NextReviewDate time.Time
}

// NewReviewState is the state of a freshly added card: due immediately.
func NewReviewState(now time.Time) ReviewState {
	return ReviewState{
		Interval:       0,
		EaseFactor:     DefaultEaseFactor,
		NextReviewDate: now,
	}
}

// Due reports whether the card should be shown at now.
func (rs ReviewState) Due(now time.Time) bool {
	return !rs.NextReviewDate.After(now)
}

// Review applies a graded review to state. The returned state has
// LastReviewed set to the review time, so NextReviewDate is always
// LastReviewed plus Interval days.
func (s *Scheduler) Review(state ReviewState, quality Quality) (ReviewState, error) {
	now := s.clock.Now()
	res, err := Next(quality, state.Interval, state.EaseFactor, now)
	if err != nil {
		return state, err
	}
	return ReviewState{
		Interval:       res.Interval,
		EaseFactor:     res.EaseFactor,
		LastReviewed:   &now,
		NextReviewDate: res.NextReviewDate,
	}, nil
}

// Phase is a coarse label for where a card sits in the review cycle.
type Phase string

const (
	PhaseNew        Phase = "new"
	PhaseLearning   Phase = "learning"
	PhaseGraduating Phase = "graduating"
	PhaseMature     Phase = "mature"
)

// PhaseOf maps an interval to its phase.
func PhaseOf(interval int) Phase {
	switch {
	case interval <= 0:
		return PhaseNew
	case interval == 1:
		return PhaseLearning
	case interval == 6:
		return PhaseGraduating
	default:
		return PhaseMature
	}
}
