package deploy

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProjectFile(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestDetectProjectTypeFromMarker(t *testing.T) {
	tests := []struct {
		name     string
		marker   string
		expected string
	}{
		{"node project", "package.json", "javascript"},
		{"typescript project", "tsconfig.json", "typescript"},
		{"python requirements", "requirements.txt", "python"},
		{"rust crate", "Cargo.toml", "rust"},
		{"go module", "go.mod", "golang"},
		{"maven project", "pom.xml", "java"},
		{"ruby gems", "Gemfile", "ruby"},
		{"swift package", "Package.swift", "swift"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			dir := t.TempDir()
			writeProjectFile(t, dir, tt.marker)

			tech, ok := svc.DetectProjectType(dir)
			if !ok {
				t.Fatal("expected detection to succeed")
			}
			if tech != tt.expected {
				t.Errorf("DetectProjectType = %q, want %q", tech, tt.expected)
			}
		})
	}
}

func TestMarkerBeatsExtensionCount(t *testing.T) {
	svc, _ := newTestService(t)
	dir := t.TempDir()

	writeProjectFile(t, dir, "go.mod")
	// more python files than anything else should not matter
	writeProjectFile(t, dir, "scripts/one.py")
	writeProjectFile(t, dir, "scripts/two.py")
	writeProjectFile(t, dir, "scripts/three.py")

	tech, ok := svc.DetectProjectType(dir)
	if !ok || tech != "golang" {
		t.Errorf("expected golang from go.mod marker, got %q (ok=%v)", tech, ok)
	}
}

func TestDetectProjectTypeByExtensionFrequency(t *testing.T) {
	svc, _ := newTestService(t)
	dir := t.TempDir()

	writeProjectFile(t, dir, "a.py")
	writeProjectFile(t, dir, "sub/b.py")
	writeProjectFile(t, dir, "sub/c.py")
	writeProjectFile(t, dir, "util.rb")
	writeProjectFile(t, dir, "README.md")

	tech, ok := svc.DetectProjectType(dir)
	if !ok || tech != "python" {
		t.Errorf("expected python by extension frequency, got %q (ok=%v)", tech, ok)
	}
}

func TestDetectProjectTypeIgnoresUnmappedExtensions(t *testing.T) {
	svc, _ := newTestService(t)
	dir := t.TempDir()

	// plenty of files, but only one with a mapped extension
	writeProjectFile(t, dir, "a.txt")
	writeProjectFile(t, dir, "b.txt")
	writeProjectFile(t, dir, "c.md")
	writeProjectFile(t, dir, "lonely.kt")

	tech, ok := svc.DetectProjectType(dir)
	if !ok || tech != "kotlin" {
		t.Errorf("expected kotlin from only mapped extension, got %q (ok=%v)", tech, ok)
	}
}

func TestDetectProjectTypeNothingToDetect(t *testing.T) {
	svc, _ := newTestService(t)

	t.Run("empty directory", func(t *testing.T) {
		if tech, ok := svc.DetectProjectType(t.TempDir()); ok {
			t.Errorf("expected no detection, got %q", tech)
		}
	})

	t.Run("only unmapped files", func(t *testing.T) {
		dir := t.TempDir()
		writeProjectFile(t, dir, "notes.txt")
		writeProjectFile(t, dir, "NOTICE")
		if tech, ok := svc.DetectProjectType(dir); ok {
			t.Errorf("expected no detection, got %q", tech)
		}
	})
}
