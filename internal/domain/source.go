package domain

import (
	"strings"
	"time"
)

const (
	SourceLocal = "local"
	SourceGit   = "git"
)

// Source is a word list a user imports cards from: a local directory or a
// git repository of markdown files.
type Source struct {
	ID             int64      `json:"id"`
	UserID         string     `json:"userId"`
	Path           string     `json:"path"`
	Type           string     `json:"type"`
	TargetLanguage string     `json:"targetLanguage"`
	LastScanned    *time.Time `json:"lastScanned,omitempty"`
}

// SourceType guesses whether path refers to a git remote.
func SourceType(path string) string {
	if strings.HasSuffix(path, ".git") || strings.HasPrefix(path, "git@") ||
		strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return SourceGit
	}
	return SourceLocal
}
