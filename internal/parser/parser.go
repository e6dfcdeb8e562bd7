package parser

import (
	"bufio"
	"io"
	"os"
	"strings"
)

const (
	wordPrefix     = "W:"
	languagePrefix = "L:"
	notePrefix     = "N:"
)

// Entry is a word found in a word list file.
type Entry struct {
	Word     string
	Language string // empty means the source's default language
	Note     string
}

type state int

const (
	seeking state = iota
	readingWord
	readingLanguage
	readingNote
)

// ParseFile reads a file from the given path and extracts all entries.
func ParseFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a markdown word list. Entries are either "W:" blocks with
// optional "L:" and "N:" lines, or bullet lines ("- word", "* word") outside
// of a block. A "---" line or the next "W:" ends a block.
func Parse(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var entries []Entry
	var current Entry
	var block []string
	currentState := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(block, "\n"))
		switch currentState {
		case readingWord:
			current.Word = content
		case readingLanguage:
			current.Language = content
		case readingNote:
			current.Note = content
		}
		block = nil
	}

	finishEntry := func() {
		flushBlock()
		if current.Word != "" {
			entries = append(entries, current)
		}
		current = Entry{}
		currentState = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == "---" {
			finishEntry()
			continue
		}

		switch {
		case strings.HasPrefix(line, wordPrefix):
			if currentState != seeking {
				finishEntry()
			}
			currentState = readingWord
			block = append(block, trimPrefix(line, wordPrefix))
		case strings.HasPrefix(line, languagePrefix):
			flushBlock()
			currentState = readingLanguage
			block = append(block, trimPrefix(line, languagePrefix))
		case strings.HasPrefix(line, notePrefix):
			flushBlock()
			currentState = readingNote
			block = append(block, trimPrefix(line, notePrefix))
		case currentState == seeking:
			if word, ok := bullet(line); ok {
				entries = append(entries, Entry{Word: word})
			}
		case currentState == readingNote:
			block = append(block, line)
		case strings.TrimSpace(line) == "":
			// Words and languages are single line; a blank line closes them.
			finishEntry()
		}
	}

	finishEntry()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func trimPrefix(line, prefix string) string {
	return strings.TrimPrefix(line[len(prefix):], " ")
}

func bullet(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	for _, marker := range []string{"- ", "* "} {
		if strings.HasPrefix(trimmed, marker) {
			word := strings.TrimSpace(trimmed[len(marker):])
			return word, word != ""
		}
	}
	return "", false
}
