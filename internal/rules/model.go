// Package rules defines the data model shared by every surface of the
// cursor-rules service: rule documents fetched from the central repository,
// the sets they are served in, and the file-context lookup key used to
// resolve a technology for an individual file.
package rules

import "time"

// Rule is a single lint/style convention document for one technology.
// The Content payload is opaque to this service; it is whatever the rule
// author put in the JSON file (linter names, settings, thresholds).
type Rule struct {
	ID           string         `json:"id"`
	Technology   string         `json:"technology"`
	FilePatterns []string       `json:"file_patterns"`
	Content      map[string]any `json:"content"`
	Version      string         `json:"version"`
	UpdatedAt    *time.Time     `json:"updated_at,omitempty"`
}

// RuleSet is a fetched collection of rules plus fetch metadata.
// Total always equals len(Rules).
type RuleSet struct {
	Rules     []Rule    `json:"rules"`
	Total     int       `json:"total"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewRuleSet builds a RuleSet from a slice of rules, stamping the fetch time.
func NewRuleSet(list []Rule) *RuleSet {
	return &RuleSet{
		Rules:     list,
		Total:     len(list),
		FetchedAt: time.Now().UTC(),
	}
}

// FindByID returns the rule with the given identifier, or false when the set
// does not contain it.
func (rs *RuleSet) FindByID(id string) (Rule, bool) {
	for _, r := range rs.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// FileContext describes a file a client wants rules for. Only FilePath is
// required; ProjectType, when set, overrides any technology derived from the
// file extension.
type FileContext struct {
	FilePath          string         `json:"file_path"`
	FileType          string         `json:"file_type,omitempty"`
	ProjectType       string         `json:"project_type,omitempty"`
	AdditionalContext map[string]any `json:"additional_context,omitempty"`
}
