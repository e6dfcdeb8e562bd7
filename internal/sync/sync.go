// Package sync imports words from registered sources into the user's deck
// and removes cards whose words were deleted from the source.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/conorfennell/wordcards/internal/deck"
	"github.com/conorfennell/wordcards/internal/domain"
	"github.com/conorfennell/wordcards/internal/fingerprint"
	"github.com/conorfennell/wordcards/internal/gitsource"
	"github.com/conorfennell/wordcards/internal/parser"
	"github.com/conorfennell/wordcards/internal/storage"
)

// Report counts what a sync changed.
type Report struct {
	Sources int `json:"sources"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Errors  int `json:"errors"`
}

func (r *Report) merge(o Report) {
	r.Sources += o.Sources
	r.Added += o.Added
	r.Removed += o.Removed
	r.Errors += o.Errors
}

// Syncer reconciles sources with the cards stored for them.
type Syncer struct {
	store    *storage.DB
	deck     *deck.Service
	reposDir string
	now      func() time.Time
}

// New creates a Syncer. Git sources are checked out below reposDir.
func New(store *storage.DB, d *deck.Service, reposDir string) *Syncer {
	return &Syncer{store: store, deck: d, reposDir: reposDir, now: time.Now}
}

// Run syncs every source of every user.
func (s *Syncer) Run(ctx context.Context) (Report, error) {
	sources, err := s.store.AllSources(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to get sources: %w", err)
	}
	return s.syncAll(ctx, sources), nil
}

// RunUser syncs the sources of one user.
func (s *Syncer) RunUser(ctx context.Context, userID string) (Report, error) {
	sources, err := s.store.GetSources(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to get sources for user %s: %w", userID, err)
	}
	return s.syncAll(ctx, sources), nil
}

func (s *Syncer) syncAll(ctx context.Context, sources []domain.Source) Report {
	var total Report
	if len(sources) == 0 {
		log.Info().Msg("no sources configured")
		return total
	}

	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		report, err := s.SyncSource(ctx, src)
		total.merge(report)
		if err != nil {
			total.Errors++
			log.Error().Err(err).Int64("source", src.ID).Str("path", src.Path).Msg("source sync failed")
		}
	}
	log.Info().
		Int("sources", total.Sources).
		Int("added", total.Added).
		Int("removed", total.Removed).
		Int("errors", total.Errors).
		Msg("sync complete")
	return total
}

// SyncSource brings one source up to date. Git sources are cloned or pulled
// first.
func (s *Syncer) SyncSource(ctx context.Context, src domain.Source) (Report, error) {
	dir := src.Path
	if src.Type == domain.SourceGit {
		localPath, err := gitsource.LocalPath(s.reposDir, src.Path)
		if err != nil {
			return Report{}, err
		}
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return Report{}, fmt.Errorf("failed to create repos directory: %w", err)
		}
		if err := gitsource.Sync(ctx, src.Path, localPath); err != nil {
			return Report{}, err
		}
		dir = localPath
	}
	return s.reconcile(ctx, src, dir)
}

func (s *Syncer) reconcile(ctx context.Context, src domain.Source, dir string) (Report, error) {
	report := Report{Sources: 1}
	found := make(map[string]bool)
	parseFailed := false

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		entries, err := parser.ParseFile(path)
		if err != nil {
			parseFailed = true
			report.Errors++
			log.Warn().Err(err).Str("file", path).Msg("failed to parse word list")
			return nil
		}
		for _, entry := range entries {
			lang := entry.Language
			if lang == "" {
				lang = src.TargetLanguage
			}
			found[fingerprint.Hash(src.UserID, entry.Word, lang)] = true

			sourceID := src.ID
			_, err := s.deck.AddWord(ctx, src.UserID, entry.Word, lang, &sourceID)
			switch {
			case err == nil:
				report.Added++
			case errors.Is(err, storage.ErrDuplicateCard):
			default:
				report.Errors++
				log.Warn().Err(err).Str("word", entry.Word).Str("file", path).Msg("failed to add word")
			}
		}
		return ctx.Err()
	})
	if walkErr != nil {
		return report, fmt.Errorf("failed to walk %s: %w", dir, walkErr)
	}

	if parseFailed {
		// The unreadable file's words are unknown, so none of the source's
		// cards can be called orphaned.
		log.Warn().Int64("source", src.ID).Msg("skipping orphan removal after parse errors")
		return report, nil
	}

	cards, err := s.store.CardsBySource(ctx, src.ID)
	if err != nil {
		return report, err
	}
	for _, card := range cards {
		if found[card.Fingerprint] {
			continue
		}
		if err := s.deck.DeleteCard(ctx, card.UserID, card.ID); err != nil {
			report.Errors++
			log.Warn().Err(err).Str("card", card.ID).Msg("failed to delete orphaned card")
			continue
		}
		report.Removed++
	}

	if err := s.store.UpdateSourceLastScanned(ctx, src.ID, s.now()); err != nil {
		log.Warn().Err(err).Int64("source", src.ID).Msg("failed to update last scanned")
	}
	log.Info().
		Int64("source", src.ID).
		Str("path", dir).
		Int("added", report.Added).
		Int("removed", report.Removed).
		Msg("source reconciled")
	return report, nil
}

// Schedule runs Run every interval until the returned scheduler is stopped.
// A run that is still going when the next one is due is not overlapped.
func (s *Syncer) Schedule(ctx context.Context, interval time.Duration) (*gocron.Scheduler, error) {
	sched := gocron.NewScheduler(time.UTC)
	sched.SingletonModeAll()
	_, err := sched.Every(interval).Do(func() {
		if _, err := s.Run(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled sync failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule sync: %w", err)
	}
	sched.StartAsync()
	return sched, nil
}
