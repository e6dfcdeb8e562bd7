package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/conorfennell/wordcards/internal/domain"
)

// textModel is the part of *genai.GenerativeModel the generator uses.
type textModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini generates card content with Google's Gemini models.
type Gemini struct {
	client   *genai.Client
	model    textModel
	imageURL string
}

// NewGemini creates a Gemini-backed generator. Close releases the client.
func NewGemini(ctx context.Context, apiKey, modelName, imageURL string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)

	return &Gemini{client: client, model: model, imageURL: imageURL}, nil
}

// Close closes the underlying client.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Gemini) GenerateCard(ctx context.Context, word, targetLanguage string) (domain.Generated, error) {
	translation, err := g.complete(ctx, translationPrompt(word, targetLanguage))
	if err != nil {
		return domain.Generated{}, fmt.Errorf("translating %q: %w", word, err)
	}

	sentencesText, err := g.complete(ctx, sentencesPrompt(word, targetLanguage))
	if err != nil {
		return domain.Generated{}, fmt.Errorf("generating example sentences for %q: %w", word, err)
	}
	sentences := pairSentences(sentencesText, sentenceCount)
	if len(sentences) < sentenceCount {
		log.Warn().Str("word", word).Int("sentences", len(sentences)).Msg("model returned fewer example sentences than requested")
	}

	return domain.Generated{
		Word:             word,
		TargetLanguage:   targetLanguage,
		Translation:      firstLine(translation),
		ExampleSentences: sentences,
		ImageURL:         g.imageURL,
	}, nil
}

func (g *Gemini) SummarizeSession(ctx context.Context, struggled []string, totalReviewed int) (string, error) {
	summary, err := g.complete(ctx, summaryPrompt(struggled, totalReviewed))
	if err != nil {
		return "", fmt.Errorf("summarizing review session: %w", err)
	}
	return summary, nil
}

func (g *Gemini) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String())
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}

func translationPrompt(word, targetLanguage string) string {
	return fmt.Sprintf(`Translate the word "%s" from %s into English. Return only the translation.`, word, targetLanguage)
}

func sentencesPrompt(word, targetLanguage string) string {
	return fmt.Sprintf(`You are a language teacher. Generate %[3]d example sentences using the word "%[1]s" in %[2]s, `+
		`and their English translations in the following order: "%[3]d %[2]s sentences. %[3]d English translations of those sentences.". `+
		`Try to generate sentences with different contexts or even with different meanings of the given word if possible. `+
		`Each sentence should be on a newline. Just return the sentences without any extra formatting or explanations.`,
		word, targetLanguage, sentenceCount)
}

func summaryPrompt(struggled []string, totalReviewed int) string {
	struggledList := "none"
	if len(struggled) > 0 {
		struggledList = strings.Join(struggled, ", ")
	}
	return fmt.Sprintf(`You are an AI assistant designed to provide helpful summaries of vocabulary review sessions.

Provide a summary of the user's performance, highlighting the words they struggled with, so they can focus their future study efforts.
The user struggled with the following words: %s
The user reviewed a total of %d words.`, struggledList, totalReviewed)
}
