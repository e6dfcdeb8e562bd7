// Package config loads settings from defaults, an optional YAML file, a
// .env file, WORDCARDS_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/wordcards/internal/generator"
)

const envPrefix = "WORDCARDS_"

const (
	ProviderGemini  = "gemini"
	ProviderOffline = "offline"
)

type Config struct {
	Addr     string `koanf:"addr" validate:"required"`
	DB       string `koanf:"db" validate:"required"`
	LogLevel string `koanf:"log-level" validate:"oneof=trace debug info warn error"`
	Pretty   bool   `koanf:"pretty"`

	AIProvider       string `koanf:"ai-provider" validate:"oneof=gemini offline"`
	GeminiAPIKey     string `koanf:"gemini-api-key" validate:"required_if=AIProvider gemini"`
	GeminiModel      string `koanf:"gemini-model" validate:"required_if=AIProvider gemini"`
	PlaceholderImage string `koanf:"placeholder-image" validate:"omitempty,url"`

	RedisAddr     string        `koanf:"redis-addr" validate:"omitempty,hostname_port"`
	RedisPassword string        `koanf:"redis-password"`
	RedisDB       int           `koanf:"redis-db" validate:"gte=0"`
	CacheTTL      time.Duration `koanf:"cache-ttl" validate:"gte=0"`

	ReposDir     string        `koanf:"repos-dir" validate:"required"`
	SyncInterval time.Duration `koanf:"sync-interval" validate:"gte=0"`
	SyncOnce     bool          `koanf:"sync-once"`
}

func flagSet() *pflag.FlagSet {
	f := pflag.NewFlagSet("wordcards", pflag.ContinueOnError)
	f.String("config", "", "Path to a YAML config file")
	f.String("addr", ":8080", "HTTP listen address")
	f.String("db", "wordcards.db", "Path to the SQLite database file")
	f.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	f.Bool("pretty", false, "Human-readable console logs")
	f.String("ai-provider", ProviderGemini, "Card content provider (gemini, offline)")
	f.String("gemini-api-key", "", "Gemini API key")
	f.String("gemini-model", "gemini-2.0-flash", "Gemini model name")
	f.String("placeholder-image", generator.DefaultImageURL, "Image URL used for every card")
	f.String("redis-addr", "", "Redis address for the generation cache; empty disables it")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database number")
	f.Duration("cache-ttl", 30*24*time.Hour, "How long generated content is cached; 0 keeps it forever")
	f.String("repos-dir", "repos", "Directory git sources are checked out into")
	f.Duration("sync-interval", time.Hour, "How often sources are synced; 0 disables periodic sync")
	f.Bool("sync-once", false, "Sync all sources once and exit")
	return f
}

// Load parses args (without the program name) and the other configuration
// layers into a validated Config.
func Load(args []string) (*Config, error) {
	f := flagSet()
	if err := f.Parse(args); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")

	if path, _ := f.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", "-")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// Flag defaults fill keys nothing else set; flags given on the command
	// line override everything.
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.AIProvider = strings.ToLower(cfg.AIProvider)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
