// Package manager implements the rule cache: an in-memory map from
// technology to the most recently fetched rule set, refreshed through the
// remote source once the TTL elapses and mirrored to a local rules directory
// for the deployment service to copy from.
package manager

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/ololo-tratata/cursor-rules/internal/logging"
	"github.com/ololo-tratata/cursor-rules/internal/rules"
	"github.com/ololo-tratata/cursor-rules/pkg/fileops"
)

// Fetcher is the upstream the manager refreshes from. The repository source
// satisfies it; tests substitute fakes.
type Fetcher interface {
	FetchRulesForTechnology(ctx context.Context, technology string) []rules.Rule
}

type cacheEntry struct {
	set       *rules.RuleSet
	fetchedAt time.Time
}

// RuleManager caches rule sets per technology. All cache access runs under
// one mutex, and the TTL check, upstream fetch, and overwrite form a single
// critical section, so concurrent requests for a stale technology trigger
// exactly one upstream fetch.
type RuleManager struct {
	fetcher  Fetcher
	rulesDir string
	ttl      time.Duration
	logger   *logging.AppLogger

	mu    sync.Mutex
	cache map[string]cacheEntry

	now func() time.Time // overridable in tests
}

// NewRuleManager creates a manager persisting fetched rules under rulesDir.
func NewRuleManager(fetcher Fetcher, rulesDir string, ttl time.Duration, logger *logging.AppLogger) (*RuleManager, error) {
	if err := fileops.EnsureDirectoryExists(rulesDir); err != nil {
		return nil, err
	}
	logger.Info("Initialized rule manager", "rules_dir", rulesDir, "ttl", ttl)
	return &RuleManager{
		fetcher:  fetcher,
		rulesDir: rulesDir,
		ttl:      ttl,
		logger:   logger,
		cache:    make(map[string]cacheEntry),
		now:      time.Now,
	}, nil
}

// GetRulesForTechnology returns the cached rule set for a technology while
// it is fresh, refetching from upstream and overwriting the entry once the
// TTL has elapsed. Freshly fetched rules are also persisted to the local
// rules directory, one JSON file per rule; persistence failures are logged
// and never fail the call.
func (m *RuleManager) GetRulesForTechnology(ctx context.Context, technology string) *rules.RuleSet {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.cache[technology]; ok && m.now().Sub(entry.fetchedAt) < m.ttl {
		m.logger.Debug("Cache hit", "technology", technology)
		return entry.set
	}

	fetched := m.fetcher.FetchRulesForTechnology(ctx, technology)
	set := rules.NewRuleSet(fetched)
	m.cache[technology] = cacheEntry{set: set, fetchedAt: m.now()}
	m.logger.Debug("Cache refreshed", "technology", technology, "rules", set.Total)

	m.persistRules(technology, set)
	return set
}

// GetRulesForFile resolves a technology from the file context (an explicit
// project type wins over the file extension) and delegates to
// GetRulesForTechnology.
func (m *RuleManager) GetRulesForFile(ctx context.Context, fileCtx rules.FileContext) *rules.RuleSet {
	technology := rules.TechnologyForContext(fileCtx)
	m.logger.Debug("Resolved technology for file",
		"file", fileCtx.FilePath, "technology", technology)
	return m.GetRulesForTechnology(ctx, technology)
}

// GetRuleByID returns the rule with the given identifier from the
// technology's current rule set, fetching or refreshing the set as needed.
// The second return value is false when no such rule exists.
func (m *RuleManager) GetRuleByID(ctx context.Context, ruleID, technology string) (rules.Rule, bool) {
	return m.GetRulesForTechnology(ctx, technology).FindByID(ruleID)
}

// persistRules mirrors a rule set to <rulesDir>/<technology>/<id>.json.
// Best-effort: a failed write is logged and the remaining rules are still
// written. Called with the cache mutex held.
func (m *RuleManager) persistRules(technology string, set *rules.RuleSet) {
	dir := filepath.Join(m.rulesDir, technology)
	if err := fileops.EnsureDirectoryExists(dir); err != nil {
		m.logger.Error("Failed to create technology rules directory",
			"technology", technology, "error", err)
		return
	}

	for _, rule := range set.Rules {
		data, err := rules.MarshalRule(rule)
		if err != nil {
			m.logger.Error("Failed to encode rule", "rule", rule.ID, "error", err)
			continue
		}
		path := filepath.Join(dir, rule.ID+".json")
		if err := fileops.AtomicWriteFile(path, data); err != nil {
			m.logger.Error("Failed to persist rule", "rule", rule.ID, "path", path, "error", err)
			continue
		}
	}
}
