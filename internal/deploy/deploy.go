// Package deploy copies previously fetched rule files into a target
// project's .cursor-rules directory and maintains the index file that tells
// editors which technologies have rules deployed. It also provides
// best-effort project type detection for deploys that omit a technology.
package deploy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ololo-tratata/cursor-rules/internal/logging"
	"github.com/ololo-tratata/cursor-rules/pkg/fileops"
)

// RulesDirName is the configuration subdirectory created inside target
// projects.
const RulesDirName = ".cursor-rules"

const indexFileName = "index.json"

// Index is the schema of <target>/.cursor-rules/index.json. Entries are
// merged per technology: deploying one technology never disturbs another's
// entry.
type Index struct {
	Technologies map[string]TechnologyIndex `json:"technologies"`
}

// TechnologyIndex records the rules deployed for one technology.
type TechnologyIndex struct {
	Rules   []string `json:"rules"`
	Updated bool     `json:"updated"`
}

// Service deploys rules from the local rules directory into target projects.
type Service struct {
	rulesDir string
	logger   *logging.AppLogger
}

// NewService creates a deployment service reading from rulesDir, the same
// directory the rule manager persists fetched rules into.
func NewService(rulesDir string, logger *logging.AppLogger) *Service {
	return &Service{rulesDir: rulesDir, logger: logger}
}

// DeployRules copies every rule file for the technology into
// <targetDir>/.cursor-rules/<technology>/ and refreshes the index file.
// The technology's rules must have been fetched before: a missing source
// directory fails immediately with no side effects on the target. A failure
// mid-copy or during the index update fails the deploy but leaves already
// copied files in place; there is no rollback.
func (s *Service) DeployRules(targetDir, technology string) error {
	sourceDir := filepath.Join(s.rulesDir, technology)
	targetRulesDir := filepath.Join(targetDir, RulesDirName)

	s.logger.Info("Deploying rules", "source", sourceDir, "target", targetRulesDir)

	if !fileops.DirExists(sourceDir) {
		return fmt.Errorf("no local rules for technology %q: %s does not exist", technology, sourceDir)
	}

	targetTechDir := filepath.Join(targetRulesDir, technology)
	if err := fileops.EnsureDirectoryExists(targetTechDir); err != nil {
		return err
	}

	names, err := fileops.JSONFiles(sourceDir)
	if err != nil {
		return err
	}
	for _, name := range names {
		src := filepath.Join(sourceDir, name)
		dest := filepath.Join(targetTechDir, name)
		if err := fileops.AtomicCopy(src, dest); err != nil {
			return fmt.Errorf("failed to copy rule file %s: %w", name, err)
		}
		s.logger.Debug("Copied rule file", "file", name)
	}

	if err := s.updateIndex(targetRulesDir, technology); err != nil {
		return err
	}

	s.logger.Info("Deployed rules", "technology", technology, "count", len(names), "target", targetDir)
	return nil
}

// updateIndex merges this technology's entry into the shared index file.
// The entry is rebuilt from a fresh scan of the deployed directory so the
// index always matches what is actually on disk. An unreadable existing
// index is replaced rather than failing the deploy.
func (s *Service) updateIndex(targetRulesDir, technology string) error {
	indexPath := filepath.Join(targetRulesDir, indexFileName)

	index := Index{Technologies: map[string]TechnologyIndex{}}
	if data, err := os.ReadFile(indexPath); err == nil {
		if err := json.Unmarshal(data, &index); err != nil {
			s.logger.Warn("Existing index file is unreadable, rebuilding", "path", indexPath, "error", err)
			index = Index{Technologies: map[string]TechnologyIndex{}}
		}
		if index.Technologies == nil {
			index.Technologies = map[string]TechnologyIndex{}
		}
	}

	names, err := fileops.JSONFiles(filepath.Join(targetRulesDir, technology))
	if err != nil {
		return fmt.Errorf("failed to scan deployed rules: %w", err)
	}
	ids := make([]string, 0, len(names))
	for _, name := range names {
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	index.Technologies[technology] = TechnologyIndex{Rules: ids, Updated: true}

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := fileops.AtomicWriteFile(indexPath, data); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	return nil
}
