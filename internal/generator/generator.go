// Package generator produces card content (translation, example sentences,
// image) and review-session summaries from a generative AI backend.
package generator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/conorfennell/wordcards/internal/domain"
)

// DefaultImageURL is used while image generation is disabled.
const DefaultImageURL = "https://coffective.com/wp-content/uploads/2018/06/default-featured-image.png.jpg"

// sentenceCount is how many example sentences are requested per word.
const sentenceCount = 3

var ErrEmptyResponse = errors.New("generator: empty response from model")

// Generator is the AI collaborator behind card creation.
type Generator interface {
	GenerateCard(ctx context.Context, word, targetLanguage string) (domain.Generated, error)
	SummarizeSession(ctx context.Context, struggled []string, totalReviewed int) (string, error)
}

// Offline is a Generator that never leaves the process. It is used when no
// AI provider is configured.
type Offline struct {
	ImageURL string
}

func (o Offline) GenerateCard(_ context.Context, word, targetLanguage string) (domain.Generated, error) {
	return domain.Generated{
		Word:           word,
		TargetLanguage: targetLanguage,
		Translation:    fmt.Sprintf("Translated to en: %s", word),
		ImageURL:       o.ImageURL,
	}, nil
}

func (o Offline) SummarizeSession(_ context.Context, struggled []string, totalReviewed int) (string, error) {
	if len(struggled) == 0 {
		return fmt.Sprintf("You reviewed %d words without any trouble.", totalReviewed), nil
	}
	return fmt.Sprintf("You reviewed %d words. Focus next time on: %s.",
		totalReviewed, strings.Join(struggled, ", ")), nil
}

var listMarker = regexp.MustCompile(`^(\d+[.)]|[-*•])\s+`)

// pairSentences splits model output of the form "n target sentences, then n
// English translations", one per line, into example sentences. Blank lines
// and list markers are ignored. Short output is paired up as far as it goes.
func pairSentences(text string, n int) []domain.ExampleSentence {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = listMarker.ReplaceAllString(strings.TrimSpace(line), "")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2*n {
		n = len(lines) / 2
	}
	if n == 0 {
		if len(lines) == 1 {
			return []domain.ExampleSentence{{Sentence: lines[0]}}
		}
		return nil
	}

	sentences := make([]domain.ExampleSentence, 0, n)
	for i := 0; i < n; i++ {
		sentences = append(sentences, domain.ExampleSentence{
			Sentence:    lines[i],
			Translation: lines[i+n],
		})
	}
	return sentences
}
