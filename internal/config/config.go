package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// KnowledgeDir is the directory where learning markdown files are written.
	// Empty means <baseDir>/knowledge, resolved at startup.
	KnowledgeDir string `json:"knowledge_dir,omitempty"`

	// ArchonBaseURL is the base URL of the external document store.
	// Empty disables forwarding: captures still write markdown locally and
	// every archon_storage entry reports status "failed".
	ArchonBaseURL string `json:"archon_base_url,omitempty"`

	// ArchonTimeoutSecs bounds each document-store HTTP call. Default 10.
	ArchonTimeoutSecs int `json:"archon_timeout_secs,omitempty"`

	// DefaultMaxResults is the search result cap applied when the caller
	// omits max_results. Default 10.
	DefaultMaxResults int `json:"default_max_results,omitempty"`

	// SpeakerLabels are the turn delimiters used when segmenting session
	// transcripts. Default: ["User:", "Assistant:"].
	SpeakerLabels []string `json:"speaker_labels,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all index access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ArchonTimeoutSecs: 10,
		DefaultMaxResults: 10,
		SpeakerLabels:     []string{"User:", "Assistant:"},
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.hindsight.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.hindsight) and repo
// (.hindsight) directories. Repo config is found by walking upward from
// startDir to find the nearest .hindsight/config.json. Repo config takes
// precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest
// .hindsight/config.json. Returns the path if found, or empty string.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".hindsight", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, not found
			return ""
		}
		dir = parent
	}
}

// ResolveKnowledgeDir returns the effective knowledge directory for baseDir.
func (c *Config) ResolveKnowledgeDir(baseDir string) string {
	if strings.TrimSpace(c.KnowledgeDir) != "" {
		return c.KnowledgeDir
	}
	return filepath.Join(baseDir, "knowledge")
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and
// deduplicated, except SpeakerLabels where the overlay replaces the base
// outright (a transcript follows one label convention, not a union).
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.KnowledgeDir = overlay.KnowledgeDir
	if result.KnowledgeDir == "" {
		result.KnowledgeDir = base.KnowledgeDir
	}

	result.ArchonBaseURL = overlay.ArchonBaseURL
	if result.ArchonBaseURL == "" {
		result.ArchonBaseURL = base.ArchonBaseURL
	}

	result.ArchonTimeoutSecs = overlay.ArchonTimeoutSecs
	if result.ArchonTimeoutSecs == 0 {
		result.ArchonTimeoutSecs = base.ArchonTimeoutSecs
	}

	result.DefaultMaxResults = overlay.DefaultMaxResults
	if result.DefaultMaxResults == 0 {
		result.DefaultMaxResults = base.DefaultMaxResults
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.SpeakerLabels = cleanStringSlice(overlay.SpeakerLabels)
	if len(result.SpeakerLabels) == 0 {
		result.SpeakerLabels = cleanStringSlice(base.SpeakerLabels)
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// cleanStringSlice trims whitespace and drops empty entries.
func cleanStringSlice(in []string) []string {
	result := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
