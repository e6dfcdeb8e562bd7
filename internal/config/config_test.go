package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestLoadDefaults(t *testing.T) {
	is := is.New(t)

	cfg, err := Load([]string{"--ai-provider", "offline"})
	is.NoErr(err)
	is.Equal(cfg.Addr, ":8080")
	is.Equal(cfg.DB, "wordcards.db")
	is.Equal(cfg.LogLevel, "info")
	is.Equal(cfg.AIProvider, ProviderOffline)
	is.Equal(cfg.SyncInterval, time.Hour)
	is.Equal(cfg.RedisAddr, "")
	is.True(!cfg.SyncOnce)
}

func TestLoadPrecedence(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "wordcards.yaml")
	yml := "addr: \":9000\"\ndb: file.db\nlog-level: warn\nai-provider: offline\nredis-addr: localhost:6379\n"
	is.NoErr(os.WriteFile(path, []byte(yml), 0o644))

	t.Setenv("WORDCARDS_DB", "env.db")
	t.Setenv("WORDCARDS_SYNC_INTERVAL", "15m")
	t.Setenv("WORDCARDS_REDIS_DB", "2")

	cfg, err := Load([]string{"--config", path, "--log-level", "debug"})
	is.NoErr(err)
	is.Equal(cfg.Addr, ":9000")                // file
	is.Equal(cfg.DB, "env.db")                 // env beats file
	is.Equal(cfg.LogLevel, "debug")            // flag beats file
	is.Equal(cfg.SyncInterval, 15*time.Minute) // env duration
	is.Equal(cfg.RedisDB, 2)                   // env int
	is.Equal(cfg.RedisAddr, "localhost:6379")  // file
	is.Equal(cfg.CacheTTL, 30*24*time.Hour)    // default
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "gemini without key", args: nil},
		{name: "unknown provider", args: []string{"--ai-provider", "magic"}},
		{name: "bad log level", args: []string{"--ai-provider", "offline", "--log-level", "loud"}},
		{name: "negative interval", args: []string{"--ai-provider", "offline", "--sync-interval", "-1m"}},
		{name: "bad redis address", args: []string{"--ai-provider", "offline", "--redis-addr", "not an address"}},
		{name: "unknown flag", args: []string{"--nope"}},
		{name: "missing config file", args: []string{"--config", "/does/not/exist.yaml"}},
		{name: "bad env value", env: map[string]string{"WORDCARDS_AI_PROVIDER": "offline", "WORDCARDS_REDIS_DB": "two"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(tc.args); err == nil {
				t.Errorf("Expected an error for %v, but got none", tc.args)
			}
		})
	}
}

func TestLoadGemini(t *testing.T) {
	is := is.New(t)
	t.Setenv("WORDCARDS_GEMINI_API_KEY", "secret")

	cfg, err := Load(nil)
	is.NoErr(err)
	is.Equal(cfg.AIProvider, ProviderGemini)
	is.Equal(cfg.GeminiAPIKey, "secret")
	is.Equal(cfg.GeminiModel, "gemini-2.0-flash")
}
