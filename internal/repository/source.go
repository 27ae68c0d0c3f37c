// Package repository implements the remote rule source: a client that keeps
// a local clone of the central rules repository and reads rule documents out
// of it. When the remote cannot be reached at all the client switches to a
// built-in mock rule set and stays there for its lifetime, so every caller
// above it always gets an answer.
package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v6"
	githttp "github.com/go-git/go-git/v6/plumbing/transport/http"

	"github.com/ololo-tratata/cursor-rules/internal/logging"
	"github.com/ololo-tratata/cursor-rules/internal/rules"
	"github.com/ololo-tratata/cursor-rules/pkg/fileops"
)

// Mode is the connection state of a Source. A source starts connecting and
// ends up either connected or permanently degraded to mock data.
type Mode int

const (
	// ModeConnected means the local clone is usable and fetches read from it.
	ModeConnected Mode = iota
	// ModeDegraded means the remote could not be reached at construction
	// time; every fetch serves the built-in mock rules instead.
	ModeDegraded
)

// String returns a human-readable description of the mode.
func (m Mode) String() string {
	switch m {
	case ModeConnected:
		return "connected"
	case ModeDegraded:
		return "degraded (mock data)"
	default:
		return "unknown"
	}
}

// Options configures a Source.
type Options struct {
	// RepoURL is the HTTPS clone URL of the central rules repository.
	RepoURL string
	// ClonePath is the local directory the repository is cloned into.
	ClonePath string
	// Token is an optional GitHub Personal Access Token. Empty means
	// anonymous access; the clone is still attempted public-first either
	// way and the token is only used after an initial failure.
	Token string
}

// Source fetches rule documents from the central repository via a local
// clone. It never returns errors to callers: any failure is downgraded to
// the mock rule list for the requested technology.
type Source struct {
	opts   Options
	mode   Mode
	logger *logging.AppLogger
}

// NewSource prepares the local clone and returns a source in connected mode,
// or in degraded mode when the clone cannot be established. Construction
// itself never fails.
func NewSource(ctx context.Context, opts Options, logger *logging.AppLogger) *Source {
	s := &Source{opts: opts, logger: logger}

	if err := s.prepareClone(ctx); err != nil {
		logger.Warn("Failed to connect to rules repository, falling back to mock data",
			"url", opts.RepoURL, "error", err)
		s.mode = ModeDegraded
		return s
	}

	logger.Info("Connected to rules repository", "url", opts.RepoURL, "path", opts.ClonePath)
	s.mode = ModeConnected
	return s
}

// Mode returns the source's connection state.
func (s *Source) Mode() Mode {
	return s.mode
}

// FetchRulesForTechnology returns the rule documents for a technology.
// Connected sources read `rules/<technology>` from the clone, falling back
// to the repository root when that path does not exist. Degraded sources and
// any fetch failure yield the mock list for the technology (empty when no
// mock exists); this method never fails.
func (s *Source) FetchRulesForTechnology(ctx context.Context, technology string) []rules.Rule {
	s.logger.Debug("Fetching rules", "technology", technology, "mode", s.mode.String())

	if s.mode == ModeDegraded {
		return rules.MockRules(technology)
	}

	list, err := s.readRules(ctx, technology)
	if err != nil {
		s.logger.Error("Failed to fetch rules, serving mock data",
			"technology", technology, "error", err)
		return rules.MockRules(technology)
	}
	return list
}

// FetchRulesForPath maps a file path to a technology by extension and
// delegates to FetchRulesForTechnology.
func (s *Source) FetchRulesForPath(ctx context.Context, filePath string) []rules.Rule {
	return s.FetchRulesForTechnology(ctx, rules.TechnologyForPath(filePath))
}

// prepareClone clones the repository if the clone path is empty, or opens
// the existing clone. Clones are attempted anonymously first with a token
// retry, matching how GitHub treats public vs private repositories.
func (s *Source) prepareClone(ctx context.Context) error {
	if strings.TrimSpace(s.opts.RepoURL) == "" {
		return fmt.Errorf("repository URL cannot be empty")
	}
	if strings.TrimSpace(s.opts.ClonePath) == "" {
		return fmt.Errorf("clone path cannot be empty")
	}

	if _, err := git.PlainOpen(s.opts.ClonePath); err == nil {
		// existing clone; refresh best-effort so a dead network still works
		s.pull(ctx)
		return nil
	}

	if err := fileops.EnsureDirectoryExists(filepath.Dir(s.opts.ClonePath)); err != nil {
		return err
	}

	err := s.clone(ctx, nil)
	if err != nil && s.opts.Token != "" {
		s.logger.Debug("Anonymous clone failed, retrying with token")
		os.RemoveAll(s.opts.ClonePath)
		err = s.clone(ctx, s.basicAuth())
	}
	if err != nil {
		return fmt.Errorf("failed to clone %s: %w", s.opts.RepoURL, err)
	}
	return nil
}

func (s *Source) clone(ctx context.Context, auth *githttp.BasicAuth) error {
	_, err := git.PlainCloneContext(ctx, s.opts.ClonePath, &git.CloneOptions{
		URL:  s.opts.RepoURL,
		Auth: auth,
	})
	return err
}

// pull refreshes the existing clone. Failures are logged and swallowed: a
// stale clone is still a valid rule source.
func (s *Source) pull(ctx context.Context) {
	repo, err := git.PlainOpen(s.opts.ClonePath)
	if err != nil {
		s.logger.Warn("Failed to open clone for refresh", "error", err)
		return
	}
	worktree, err := repo.Worktree()
	if err != nil {
		s.logger.Warn("Failed to get working tree for refresh", "error", err)
		return
	}

	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName: "origin",
		Auth:       s.basicAuth(),
		Force:      true,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		s.logger.Warn("Failed to refresh clone, serving cached contents", "error", err)
	}
}

func (s *Source) basicAuth() *githttp.BasicAuth {
	if s.opts.Token == "" {
		return nil
	}
	// GitHub PAT authentication uses "token" as username
	return &githttp.BasicAuth{Username: "token", Password: s.opts.Token}
}

// readRules loads every *.json file in the technology's rule directory.
// Individual files that fail to parse are skipped with a log line; a missing
// or unreadable directory is an error for the caller to downgrade.
func (s *Source) readRules(ctx context.Context, technology string) ([]rules.Rule, error) {
	s.pull(ctx)

	relDir := filepath.Join("rules", technology)
	dir := filepath.Join(s.opts.ClonePath, relDir)
	if !fileops.DirExists(dir) {
		s.logger.Warn("Technology path not found in repository, trying root",
			"technology", technology, "path", relDir)
		relDir = ""
		dir = s.opts.ClonePath
	}

	names, err := fileops.JSONFiles(dir)
	if err != nil {
		return nil, err
	}

	list := make([]rules.Rule, 0, len(names))
	for _, name := range names {
		rule, err := s.parseRuleFile(dir, relDir, name, technology)
		if err != nil {
			s.logger.Error("Skipping unparseable rule file", "file", name, "error", err)
			continue
		}
		list = append(list, rule)
	}
	return list, nil
}

// parseRuleFile reads one rule document, filling the fields rule authors
// commonly omit: the id from the filename, the technology from the request,
// and the update time from the file's most recent commit.
func (s *Source) parseRuleFile(dir, relDir, name, technology string) (rules.Rule, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return rules.Rule{}, fmt.Errorf("failed to read rule file: %w", err)
	}

	rule, err := rules.ParseRule(data)
	if err != nil {
		return rules.Rule{}, err
	}

	if rule.ID == "" {
		rule.ID = strings.TrimSuffix(name, ".json")
	}
	if rule.Technology == "" {
		rule.Technology = technology
	}
	if rule.UpdatedAt == nil {
		if when := s.lastCommitTime(filepath.ToSlash(filepath.Join(relDir, name))); when != nil {
			rule.UpdatedAt = when
		}
	}
	return rule, nil
}

// lastCommitTime returns the author date of the most recent commit touching
// relPath, or nil when history cannot be read. Best-effort only.
func (s *Source) lastCommitTime(relPath string) *time.Time {
	repo, err := git.PlainOpen(s.opts.ClonePath)
	if err != nil {
		return nil
	}
	iter, err := repo.Log(&git.LogOptions{FileName: &relPath})
	if err != nil {
		s.logger.Debug("Could not read commit history for rule file",
			"file", relPath, "error", err)
		return nil
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		return nil
	}
	when := commit.Author.When.UTC()
	return &when
}
