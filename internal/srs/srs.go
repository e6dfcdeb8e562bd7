package srs

import (
	"fmt"
	"math"
	"time"
)

const (
	MinEaseFactor     = 1.3
	DefaultEaseFactor = 2.5
)

// Clock supplies the current time to the scheduler.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Result is the scheduling outcome of a single review.
type Result struct {
	NextReviewDate time.Time
	Interval       int // days
	EaseFactor     float64
}

// Scheduler computes review schedules against an injected clock.
// It holds no mutable state and is safe for concurrent use.
type Scheduler struct {
	clock Clock
}

// NewScheduler returns a scheduler that reads "now" from clock.
// A nil clock falls back to the system clock.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{clock: clock}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// ComputeNextReview calculates the next interval, ease factor and review date
// for a card that has just been reviewed with the given quality.
func (s *Scheduler) ComputeNextReview(quality Quality, previousInterval int, easeFactor float64) (Result, error) {
	return Next(quality, previousInterval, easeFactor, s.clock.Now())
}

// Next is the pure form of ComputeNextReview. The next review date is counted
// in calendar days from now.
func Next(quality Quality, previousInterval int, easeFactor float64, now time.Time) (Result, error) {
	if !quality.IsValid() {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidQuality, int(quality))
	}
	if previousInterval < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidInterval, previousInterval)
	}
	if math.IsNaN(easeFactor) || math.IsInf(easeFactor, 0) {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidEase, easeFactor)
	}
	if easeFactor == 0 {
		easeFactor = DefaultEaseFactor
	}

	newEase := nextEase(quality, easeFactor)
	newInterval := nextInterval(quality, previousInterval, newEase)

	return Result{
		NextReviewDate: now.AddDate(0, 0, newInterval),
		Interval:       newInterval,
		EaseFactor:     newEase,
	}, nil
}

func nextEase(quality Quality, ease float64) float64 {
	switch quality {
	case Again:
		ease = math.Max(MinEaseFactor, ease-0.20)
	case Hard:
		ease = math.Max(MinEaseFactor, ease-0.14)
	case Good:
	case Easy:
		ease += 0.10
	}
	return math.Max(MinEaseFactor, ease)
}

// nextInterval resets failed cards to one day. Easy shares the Good growth
// path; its only extra spacing comes from the larger ease factor.
func nextInterval(quality Quality, previous int, ease float64) int {
	switch quality {
	case Again, Hard:
		return 1
	case Good, Easy:
		switch previous {
		case 0:
			return 1
		case 1:
			return 6
		default:
			return int(math.Round(float64(previous) * ease))
		}
	}
	return 1
}
