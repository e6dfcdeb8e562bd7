package fingerprint

import "testing"

func TestNormalize(t *testing.T) {
	expected := "das haus\nde"
	normalized := Normalize("  Das Haus \r\n", " DE")

	if normalized != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, normalized)
	}
}

func TestHash(t *testing.T) {
	t.Run("hash is deterministic", func(t *testing.T) {
		if Hash("u1", "Haus", "de") != Hash("u1", "haus ", "DE") {
			t.Error("Expected equivalent words to produce the same hash")
		}
	})

	t.Run("hash is scoped to the user", func(t *testing.T) {
		if Hash("u1", "haus", "de") == Hash("u2", "haus", "de") {
			t.Error("Expected different users to produce different hashes")
		}
	})

	t.Run("hash depends on language", func(t *testing.T) {
		if Hash("u1", "chat", "fr") == Hash("u1", "chat", "de") {
			t.Error("Expected different languages to produce different hashes")
		}
	})

	t.Run("hash is hex sha256", func(t *testing.T) {
		if got := len(Hash("u1", "a", "b")); got != 64 {
			t.Errorf("Expected a 64 character hash, but got %d", got)
		}
	})
}
