// Package config loads service settings from an optional YAML file and the
// environment. The file supplies defaults; environment variables always win,
// matching how the service is deployed (env-driven, file for local dev).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const appName = "cursor-rules"

// Settings holds the full runtime configuration of the service.
type Settings struct {
	// GitHubToken is an optional personal access token. When empty the
	// remote repository is accessed anonymously, and the OS credential
	// store is consulted as a fallback.
	GitHubToken string `yaml:"github_token"`
	// GitHubRepository is the owner/name of the central rules repository.
	GitHubRepository string `yaml:"github_repository"`
	// CacheTTLSeconds is how long a fetched rule set stays fresh.
	CacheTTLSeconds int `yaml:"rules_cache_ttl"`
	// RulesDir is where fetched rules are persisted, one JSON file per rule
	// under a per-technology subdirectory.
	RulesDir string `yaml:"rules_local_path"`
	// RepoCacheDir is where the central repository is cloned.
	RepoCacheDir string `yaml:"repo_cache_path"`
	APIHost      string `yaml:"api_host"`
	APIPort      int    `yaml:"api_port"`
	LogLevel     string `yaml:"log_level"`
}

// CacheTTL returns the rule cache TTL as a duration.
func (s Settings) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// RepositoryURL returns the HTTPS clone URL of the central rules repository.
func (s Settings) RepositoryURL() string {
	return fmt.Sprintf("https://github.com/%s.git", s.GitHubRepository)
}

// ListenAddr returns the host:port the HTTP server binds to.
func (s Settings) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.APIHost, s.APIPort)
}

// DefaultSettings returns settings with all defaults applied.
func DefaultSettings() Settings {
	return Settings{
		GitHubRepository: "ololo-tratata/cursor-rules",
		CacheTTLSeconds:  3600,
		RulesDir:         filepath.Join(xdg.DataHome, appName, "rules"),
		RepoCacheDir:     filepath.Join(xdg.CacheHome, appName, "repo"),
		APIHost:          "0.0.0.0",
		APIPort:          8000,
		LogLevel:         "info",
	}
}

// ConfigPath returns the standard config file location for the platform.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// Load builds settings from defaults, then the config file at the standard
// location if one exists, then the environment.
func Load() (Settings, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom is Load with an explicit config file path. A missing file is not
// an error; a malformed one is.
func LoadFrom(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// env-only operation
	default:
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := applyEnv(&s); err != nil {
		return Settings{}, err
	}

	if s.CacheTTLSeconds < 0 {
		return Settings{}, fmt.Errorf("rules cache TTL must not be negative, got %d", s.CacheTTLSeconds)
	}
	if s.APIPort <= 0 || s.APIPort > 65535 {
		return Settings{}, fmt.Errorf("invalid API port %d", s.APIPort)
	}
	return s, nil
}

// applyEnv overrides settings from the environment. An unparsable numeric
// value is an error, the same as in the config file.
func applyEnv(s *Settings) error {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		s.GitHubToken = v
	}
	if v := os.Getenv("GITHUB_REPOSITORY"); v != "" {
		s.GitHubRepository = v
	}
	if v := os.Getenv("RULES_CACHE_TTL"); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RULES_CACHE_TTL %q: %w", v, err)
		}
		s.CacheTTLSeconds = ttl
	}
	if v := os.Getenv("RULES_LOCAL_PATH"); v != "" {
		s.RulesDir = v
	}
	if v := os.Getenv("RULES_REPO_CACHE_PATH"); v != "" {
		s.RepoCacheDir = v
	}
	if v := os.Getenv("API_HOST"); v != "" {
		s.APIHost = v
	}
	if v := os.Getenv("API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid API_PORT %q: %w", v, err)
		}
		s.APIPort = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	return nil
}
