package deploy

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ololo-tratata/cursor-rules/internal/rules"
)

// projectMarkers maps dependency-manifest filenames to technologies, in
// priority order: the first marker present in the project root wins,
// regardless of what the file census says.
var projectMarkers = []struct {
	file       string
	technology string
}{
	{"package.json", "javascript"},
	{"tsconfig.json", "typescript"},
	{"requirements.txt", "python"},
	{"setup.py", "python"},
	{"Cargo.toml", "rust"},
	{"go.mod", "golang"},
	{"pom.xml", "java"},
	{"build.gradle", "java"},
	{"Gemfile", "ruby"},
	{"composer.json", "php"},
	{".swift-version", "swift"},
	{"Package.swift", "swift"},
}

// DetectProjectType guesses the main technology of a project directory.
// Marker files in the directory root are checked first; when none match,
// the whole tree is walked and the most frequent file extension with a known
// technology mapping decides (ties keep the extension encountered first).
// The second return value is false when nothing could be detected.
func (s *Service) DetectProjectType(projectDir string) (string, bool) {
	s.logger.Debug("Detecting project type", "dir", projectDir)

	for _, marker := range projectMarkers {
		if _, err := os.Stat(filepath.Join(projectDir, marker.file)); err == nil {
			s.logger.Info("Detected project type from marker file",
				"technology", marker.technology, "marker", marker.file)
			return marker.technology, true
		}
	}

	counts := map[string]int{}
	var order []string
	filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		name := d.Name()
		idx := strings.LastIndex(name, ".")
		if idx < 0 {
			return nil
		}
		ext := name[idx+1:]
		if counts[ext] == 0 {
			order = append(order, ext)
		}
		counts[ext]++
		return nil
	})

	best := ""
	bestCount := 0
	for _, ext := range order {
		if _, known := rules.KnownExtension(ext); !known {
			continue
		}
		if counts[ext] > bestCount {
			best = ext
			bestCount = counts[ext]
		}
	}

	if best == "" {
		s.logger.Info("Could not detect project type", "dir", projectDir)
		return "", false
	}

	technology, _ := rules.KnownExtension(best)
	s.logger.Info("Detected project type from file extensions",
		"technology", technology, "extension", best, "count", bestCount)
	return technology, true
}
