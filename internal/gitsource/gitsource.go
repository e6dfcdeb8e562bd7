package gitsource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/rs/zerolog/log"
)

// Sync clones a git repository if it doesn't exist at the given path,
// or pulls the latest changes if it does.
func Sync(ctx context.Context, repoURL, localPath string) error {
	_, err := os.Stat(localPath)
	switch {
	case os.IsNotExist(err):
		log.Info().Str("url", repoURL).Str("path", localPath).Msg("cloning word list repository")
		_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
			URL:   repoURL,
			Depth: 1,
		})
		if err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", repoURL, err)
		}
	case err == nil:
		log.Info().Str("path", localPath).Msg("pulling word list repository")
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
		}

		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
		}

		err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
		}
	default:
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	}

	return nil
}

// ErrUnsafePath is returned for URLs whose checkout would land outside the
// repos directory.
var ErrUnsafePath = errors.New("gitsource: repository path escapes the repos directory")

// LocalPath maps a remote URL (https or scp-like ssh) to a checkout directory
// under baseDir, e.g. https://github.com/a/b.git -> baseDir/github.com/a/b.
func LocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err == nil && (parsedURL.Scheme == "https" || parsedURL.Scheme == "http") && parsedURL.Host != "" {
		return checkoutPath(baseDir, parsedURL.Host, parsedURL.Path)
	}

	// git@host:owner/repo.git
	if userHost, repoPath, ok := strings.Cut(repoURL, ":"); ok && strings.Contains(userHost, "@") {
		_, host, _ := strings.Cut(userHost, "@")
		if host != "" && repoPath != "" {
			return checkoutPath(baseDir, host, repoPath)
		}
	}
	return "", fmt.Errorf("could not parse git URL: %s", repoURL)
}

func checkoutPath(baseDir, host, repoPath string) (string, error) {
	isSep := func(r rune) bool { return r == '/' || r == '\\' }
	if host == "." || host == ".." || strings.ContainsFunc(host, isSep) {
		return "", fmt.Errorf("%w: host %q", ErrUnsafePath, host)
	}
	segments := strings.FieldsFunc(strings.TrimSuffix(repoPath, ".git"), isSep)
	for _, seg := range segments {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrUnsafePath, repoPath)
		}
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("missing repository path in %q", repoPath)
	}

	p := filepath.Join(append([]string{baseDir, host}, segments...)...)
	rel, err := filepath.Rel(baseDir, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, repoPath)
	}
	return p, nil
}
