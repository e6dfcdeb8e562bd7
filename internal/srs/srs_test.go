package srs

import (
	"errors"
	"math"
	"testing"
	"time"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

var reviewTime = time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)

func TestComputeNextReviewScenarios(t *testing.T) {
	s := NewScheduler(fixedClock{reviewTime})

	testCases := []struct {
		name         string
		quality      Quality
		prevInterval int
		ease         float64
		wantInterval int
		wantEase     float64
	}{
		{"first good review", Good, 0, 2.5, 1, 2.5},
		{"second good review", Good, 1, 2.5, 6, 2.5},
		{"third good review", Good, 6, 2.5, 15, 2.5},
		{"again after mature", Again, 15, 2.5, 1, 2.3},
		{"easy grows with bumped ease", Easy, 6, 2.5, 16, 2.6},
		{"hard clamps ease", Hard, 1, 1.35, 1, 1.3},
		{"unset ease defaults", Good, 6, 0, 15, 2.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := s.ComputeNextReview(tc.quality, tc.prevInterval, tc.ease)
			if err != nil {
				t.Fatalf("ComputeNextReview() returned an unexpected error: %v", err)
			}
			if res.Interval != tc.wantInterval {
				t.Errorf("Expected interval %d, but got %d", tc.wantInterval, res.Interval)
			}
			if math.Abs(res.EaseFactor-tc.wantEase) > 1e-9 {
				t.Errorf("Expected ease factor %.2f, but got %.4f", tc.wantEase, res.EaseFactor)
			}
			want := reviewTime.AddDate(0, 0, tc.wantInterval)
			if !res.NextReviewDate.Equal(want) {
				t.Errorf("Expected next review %v, but got %v", want, res.NextReviewDate)
			}
		})
	}
}

func TestFailedReviewAlwaysResets(t *testing.T) {
	for _, q := range []Quality{Again, Hard} {
		for _, prev := range []int{0, 1, 6, 15, 200} {
			res, err := Next(q, prev, 2.5, reviewTime)
			if err != nil {
				t.Fatalf("Next(%v, %d) returned an unexpected error: %v", q, prev, err)
			}
			if res.Interval != 1 {
				t.Errorf("Next(%v, %d): expected interval 1, but got %d", q, prev, res.Interval)
			}
		}
	}
}

func TestInvariantsHoldAcrossInputs(t *testing.T) {
	eases := []float64{1.3, 1.31, 1.4, 2.0, 2.5, 3.7}
	for q := Again; q <= Easy; q++ {
		for prev := 0; prev <= 40; prev++ {
			for _, ease := range eases {
				res, err := Next(q, prev, ease, reviewTime)
				if err != nil {
					t.Fatalf("Next(%v, %d, %.2f) returned an unexpected error: %v", q, prev, ease, err)
				}
				if res.EaseFactor < MinEaseFactor {
					t.Errorf("Next(%v, %d, %.2f): ease %.4f below minimum", q, prev, ease, res.EaseFactor)
				}
				if res.Interval < 1 {
					t.Errorf("Next(%v, %d, %.2f): interval %d below 1", q, prev, ease, res.Interval)
				}
			}
		}
	}
}

func TestEaseIsOrderedByQuality(t *testing.T) {
	for _, ease := range []float64{1.6, 2.0, 2.5, 3.0} {
		var got [5]float64
		for q := Again; q <= Easy; q++ {
			res, err := Next(q, 6, ease, reviewTime)
			if err != nil {
				t.Fatalf("Next returned an unexpected error: %v", err)
			}
			got[q] = res.EaseFactor
		}
		if !(got[Easy] > got[Good] && got[Good] > got[Hard] && got[Hard] > got[Again]) {
			t.Errorf("Expected Easy > Good > Hard > Again for ease %.2f, but got %v", ease, got[1:])
		}
	}
}

func TestNextRejectsInvalidInput(t *testing.T) {
	if _, err := Next(Quality(0), 1, 2.5, reviewTime); !errors.Is(err, ErrInvalidQuality) {
		t.Errorf("Expected ErrInvalidQuality for grade 0, but got %v", err)
	}
	if _, err := Next(Quality(5), 1, 2.5, reviewTime); !errors.Is(err, ErrInvalidQuality) {
		t.Errorf("Expected ErrInvalidQuality for grade 5, but got %v", err)
	}
	if _, err := Next(Good, -1, 2.5, reviewTime); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("Expected ErrInvalidInterval for negative interval, but got %v", err)
	}
	for _, ease := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := Next(Good, 6, ease, reviewTime); !errors.Is(err, ErrInvalidEase) {
			t.Errorf("Expected ErrInvalidEase for ease %v, but got %v", ease, err)
		}
	}
}

func TestReviewStateLifecycle(t *testing.T) {
	created := reviewTime
	state := NewReviewState(created)
	if state.Interval != 0 || state.EaseFactor != DefaultEaseFactor || state.LastReviewed != nil {
		t.Fatalf("Unexpected initial state: %+v", state)
	}
	if !state.Due(created) {
		t.Errorf("Expected a new card to be due at creation time")
	}

	clock := &steppingClock{t: created}
	s := NewScheduler(clock)

	wantIntervals := []int{1, 6, 15, 38}
	for i, want := range wantIntervals {
		clock.t = clock.t.AddDate(0, 0, state.Interval)
		next, err := s.Review(state, Good)
		if err != nil {
			t.Fatalf("Review() returned an unexpected error: %v", err)
		}
		if next.Interval != want {
			t.Errorf("Review %d: expected interval %d, but got %d", i+1, want, next.Interval)
		}
		if next.LastReviewed == nil || !next.LastReviewed.Equal(clock.t) {
			t.Fatalf("Review %d: expected last reviewed %v, but got %v", i+1, clock.t, next.LastReviewed)
		}
		if !next.NextReviewDate.Equal(next.LastReviewed.AddDate(0, 0, next.Interval)) {
			t.Errorf("Review %d: next review date is not last reviewed plus interval", i+1)
		}
		if next.Due(clock.t) {
			t.Errorf("Review %d: card should not be due right after review", i+1)
		}
		state = next
	}

	lapsed, err := s.Review(state, Again)
	if err != nil {
		t.Fatalf("Review() returned an unexpected error: %v", err)
	}
	if lapsed.Interval != 1 || PhaseOf(lapsed.Interval) != PhaseLearning {
		t.Errorf("Expected lapse back to learning, but got interval %d", lapsed.Interval)
	}
}

func TestReviewKeepsStateOnError(t *testing.T) {
	s := NewScheduler(fixedClock{reviewTime})
	state := NewReviewState(reviewTime)
	got, err := s.Review(state, Quality(9))
	if !errors.Is(err, ErrInvalidQuality) {
		t.Fatalf("Expected ErrInvalidQuality, but got %v", err)
	}
	if got != state {
		t.Errorf("Expected state to be unchanged on error")
	}
}

func TestPhaseOf(t *testing.T) {
	testCases := map[int]Phase{0: PhaseNew, 1: PhaseLearning, 6: PhaseGraduating, 15: PhaseMature}
	for interval, want := range testCases {
		if got := PhaseOf(interval); got != want {
			t.Errorf("PhaseOf(%d) = %q, want %q", interval, got, want)
		}
	}
}

type steppingClock struct {
	t time.Time
}

func (c *steppingClock) Now() time.Time { return c.t }
