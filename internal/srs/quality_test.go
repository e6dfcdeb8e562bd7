package srs

import (
	"errors"
	"testing"
)

func TestParseQuality(t *testing.T) {
	testCases := []struct {
		input   string
		want    Quality
		wantErr bool
	}{
		{"1", Again, false},
		{"4", Easy, false},
		{" 3 ", Good, false},
		{"hard", Hard, false},
		{"EASY", Easy, false},
		{"0", 0, true},
		{"5", 0, true},
		{"perfect", 0, true},
		{"", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseQuality(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidQuality) {
					t.Fatalf("Expected ErrInvalidQuality, but got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQuality(%q) returned an unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseQuality(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestQualityString(t *testing.T) {
	if Good.String() != "Good" {
		t.Errorf("Expected Good, but got %s", Good.String())
	}
	if Quality(7).String() != "Quality(7)" {
		t.Errorf("Expected Quality(7), but got %s", Quality(7).String())
	}
}
