// Package cache keeps AI-generated card content in Redis so the same word
// is only generated once per language.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/conorfennell/wordcards/internal/domain"
	"github.com/conorfennell/wordcards/internal/generator"
)

const keyPrefix = "wordcards:card:"

// Store is the subset of the Redis client the cache uses.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Generator wraps another generator with a Redis read-through cache.
// Redis failures are logged and never fail a request.
type Generator struct {
	next  generator.Generator
	store Store
	ttl   time.Duration
}

var _ generator.Generator = (*Generator)(nil)

// New wraps next. A zero ttl keeps entries forever.
func New(next generator.Generator, store Store, ttl time.Duration) *Generator {
	return &Generator{next: next, store: store, ttl: ttl}
}

// Connect opens a Redis client and checks it answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Key is the cache key for a word. Generated content does not depend on the
// user, so entries are shared.
func Key(word, targetLanguage string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(targetLanguage)) + ":" + strings.ToLower(strings.TrimSpace(word))
}

func (g *Generator) GenerateCard(ctx context.Context, word, targetLanguage string) (domain.Generated, error) {
	key := Key(word, targetLanguage)

	raw, err := g.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached domain.Generated
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr != nil {
			log.Warn().Err(jsonErr).Str("key", key).Msg("discarding unreadable cache entry")
			break
		}
		log.Debug().Str("key", key).Msg("generation cache hit")
		// Keep the caller's spelling of the word.
		cached.Word = word
		cached.TargetLanguage = targetLanguage
		return cached, nil
	case errors.Is(err, redis.Nil):
	default:
		log.Warn().Err(err).Str("key", key).Msg("generation cache read failed")
	}

	out, err := g.next.GenerateCard(ctx, word, targetLanguage)
	if err != nil {
		return domain.Generated{}, err
	}

	if payload, err := json.Marshal(out); err == nil {
		if err := g.store.Set(ctx, key, payload, g.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("generation cache write failed")
		}
	}
	return out, nil
}

// SummarizeSession is never cached.
func (g *Generator) SummarizeSession(ctx context.Context, struggled []string, totalReviewed int) (string, error) {
	return g.next.SummarizeSession(ctx, struggled, totalReviewed)
}
