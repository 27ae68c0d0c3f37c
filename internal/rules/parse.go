package rules

import (
	"encoding/json"
	"fmt"
)

// ParseRule decodes a rule document from its JSON representation. Fields the
// author omitted are left at their zero values for the caller to fill from
// context (the source filename, the requested technology).
func ParseRule(data []byte) (Rule, error) {
	var rule Rule
	if err := json.Unmarshal(data, &rule); err != nil {
		return Rule{}, fmt.Errorf("failed to parse rule document: %w", err)
	}
	return rule, nil
}

// MarshalRule encodes a rule as indented JSON, the format used both in the
// central repository and in the local rules directory.
func MarshalRule(rule Rule) ([]byte, error) {
	data, err := json.MarshalIndent(rule, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode rule %s: %w", rule.ID, err)
	}
	return data, nil
}
