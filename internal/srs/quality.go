package srs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidQuality  = errors.New("srs: invalid review quality")
	ErrInvalidInterval = errors.New("srs: interval must not be negative")
	ErrInvalidEase     = errors.New("srs: ease factor must be a finite number")
)

// Quality is the user's self-reported recall for a card review.
type Quality int

const (
	Again Quality = 1 // Incorrect, the interval resets.
	Hard  Quality = 2 // Recalled with difficulty, the interval still resets.
	Good  Quality = 3
	Easy  Quality = 4
)

var qualityNames = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}

// IsValid reports whether q is one of the four grades.
func (q Quality) IsValid() bool {
	return q >= Again && q <= Easy
}

func (q Quality) String() string {
	if q.IsValid() {
		return qualityNames[q]
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// ParseQuality accepts either the numeric grade ("1".."4") or its name,
// case-insensitively.
func ParseQuality(s string) (Quality, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		q := Quality(n)
		if !q.IsValid() {
			return 0, fmt.Errorf("%w: %d", ErrInvalidQuality, n)
		}
		return q, nil
	}
	for q := Again; q <= Easy; q++ {
		if strings.EqualFold(s, qualityNames[q]) {
			return q, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, s)
}
