package rules

// MockRules returns the built-in demonstration rules for a technology.
// These are served whenever the remote repository cannot be reached, so the
// service stays usable without network access or credentials. Technologies
// without a mock entry yield nil.
func MockRules(technology string) []Rule {
	switch technology {
	case "python":
		return []Rule{
			{
				ID:           "python-linting",
				Technology:   "python",
				FilePatterns: []string{"*.py"},
				Content: map[string]any{
					"linters": []any{"flake8", "black"},
					"rules":   map[string]any{"max_line_length": 88},
				},
				Version: "1.0.0",
			},
			{
				ID:           "python-typing",
				Technology:   "python",
				FilePatterns: []string{"*.py"},
				Content: map[string]any{
					"type_checker": "mypy",
					"rules":        map[string]any{"disallow_untyped_defs": true},
				},
				Version: "1.0.0",
			},
		}
	case "javascript":
		return []Rule{
			{
				ID:           "javascript-eslint",
				Technology:   "javascript",
				FilePatterns: []string{"*.js", "*.jsx"},
				Content: map[string]any{
					"linter": "eslint",
					"rules":  map[string]any{"semi": "error", "quotes": []any{"error", "single"}},
				},
				Version: "1.0.0",
			},
		}
	case "typescript":
		return []Rule{
			{
				ID:           "typescript-tslint",
				Technology:   "typescript",
				FilePatterns: []string{"*.ts", "*.tsx"},
				Content: map[string]any{
					"linter": "tslint",
					"rules":  map[string]any{"indent": []any{true, "spaces", 2}},
				},
				Version: "1.0.0",
			},
		}
	case "swift":
		return []Rule{
			{
				ID:           "swift-swiftlint",
				Technology:   "swift",
				FilePatterns: []string{"*.swift"},
				Content: map[string]any{
					"linter": "swiftlint",
					"rules":  map[string]any{"line_length": 120, "force_cast": "warning"},
				},
				Version: "1.0.0",
			},
		}
	default:
		return nil
	}
}
