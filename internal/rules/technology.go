package rules

import (
	"path/filepath"
	"strings"
)

// GeneralTechnology is returned when a file extension has no known mapping.
const GeneralTechnology = "general"

// extensionTechnologies maps lower-case file extensions (without the dot) to
// technology names.
var extensionTechnologies = map[string]string{
	"py":    "python",
	"js":    "javascript",
	"jsx":   "javascript",
	"ts":    "typescript",
	"tsx":   "typescript",
	"swift": "swift",
	"go":    "golang",
	"rb":    "ruby",
	"java":  "java",
	"kt":    "kotlin",
	"cs":    "csharp",
	"php":   "php",
	"rs":    "rust",
}

// TechnologyForExtension maps a file extension (with or without a leading
// dot) to a technology name, defaulting to GeneralTechnology.
func TechnologyForExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if tech, ok := extensionTechnologies[ext]; ok {
		return tech
	}
	return GeneralTechnology
}

// TechnologyForPath derives a technology from a file path's final extension.
// Paths without an extension map to GeneralTechnology.
func TechnologyForPath(path string) string {
	return TechnologyForExtension(filepath.Ext(path))
}

// TechnologyForContext resolves the technology for a file context. An
// explicit project type wins over anything derived from the file itself;
// otherwise an explicit file type is used, then the path extension.
func TechnologyForContext(ctx FileContext) string {
	if ctx.ProjectType != "" {
		return ctx.ProjectType
	}
	if ctx.FileType != "" {
		return TechnologyForExtension(ctx.FileType)
	}
	return TechnologyForPath(ctx.FilePath)
}

// KnownExtension reports whether the extension has a technology mapping.
func KnownExtension(ext string) (string, bool) {
	tech, ok := extensionTechnologies[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return tech, ok
}

// Technologies returns the canonical list served by the technologies
// endpoint. The list is hardcoded and may be broader than what the central
// repository actually holds.
func Technologies() []string {
	return []string{
		"python", "javascript", "typescript", "rust", "golang",
		"java", "kotlin", "swift", "ruby", "csharp", "php",
	}
}
