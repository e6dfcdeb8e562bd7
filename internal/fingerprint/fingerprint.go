package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize cleans a word and its language so that trivially different
// spellings ("  Haus\r\n" and "haus") map to the same card.
func Normalize(word, lang string) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		p = strings.TrimSpace(p)
		return p
	}
	return normalizePart(word) + "\n" + normalizePart(lang)
}

// Hash returns the SHA-256 hex digest identifying a word for one user.
func Hash(userID, word, lang string) string {
	sum := sha256.Sum256([]byte(userID + "\n" + Normalize(word, lang)))
	return fmt.Sprintf("%x", sum)
}
