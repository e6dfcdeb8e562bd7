package parser

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name            string
		input           string
		expectedEntries int
		expectedWord    string
		expectedLang    string
		expectedNote    string
	}{
		{
			name:            "Single word block",
			input:           "W: Haus",
			expectedEntries: 1,
			expectedWord:    "Haus",
		},
		{
			name:            "Word with language and note",
			input:           "W: chat\nL: fr\nN: the animal, not the conversation",
			expectedEntries: 1,
			expectedWord:    "chat",
			expectedLang:    "fr",
			expectedNote:    "the animal, not the conversation",
		},
		{
			name: "Multiline note",
			input: `
W: Schadenfreude
N: joy at
someone else's misfortune
`,
			expectedEntries: 1,
			expectedWord:    "Schadenfreude",
			expectedNote:    "joy at\nsomeone else's misfortune",
		},
		{
			name: "Two blocks",
			input: `
W: Hund
---
W: Katze
L: de
`,
			expectedEntries: 2,
		},
		{
			name: "Bullet list",
			input: `# Kitchen
- Gabel
- Messer
* Löffel
`,
			expectedEntries: 3,
		},
		{
			name:            "No words, just text",
			input:           "This file has no vocabulary.",
			expectedEntries: 0,
		},
		{
			name:            "Prefixes with no space",
			input:           "W:Baum\nL:de",
			expectedEntries: 1,
			expectedWord:    "Baum",
			expectedLang:    "de",
		},
		{
			name:            "Empty bullet is ignored",
			input:           "- \n- Tisch",
			expectedEntries: 1,
			expectedWord:    "Tisch",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := strings.NewReader(tc.input)
			entries, err := Parse(r)
			if err != nil {
				t.Fatalf("Parse() returned an unexpected error: %v", err)
			}

			if len(entries) != tc.expectedEntries {
				t.Fatalf("Expected %d entries, but got %d", tc.expectedEntries, len(entries))
			}

			if tc.expectedEntries == 1 {
				entry := entries[0]
				if entry.Word != tc.expectedWord {
					t.Errorf("Expected Word to be '%s', but got '%s'", tc.expectedWord, entry.Word)
				}
				if entry.Language != tc.expectedLang {
					t.Errorf("Expected Language to be '%s', but got '%s'", tc.expectedLang, entry.Language)
				}
				if entry.Note != tc.expectedNote {
					t.Errorf("Expected Note to be '%s', but got '%s'", tc.expectedNote, entry.Note)
				}
			}
		})
	}
}
