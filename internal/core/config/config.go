// Package config handles loading and merging labeler configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	// Extends allows inheriting from a remote config (e.g., "org/repo@branch").
	Extends string `yaml:"extends,omitempty"`

	// Rules locates the label rule file.
	Rules RulesConfig `yaml:"rules"`

	// Labeling contains classification behavior settings.
	Labeling LabelingConfig `yaml:"labeling"`

	// Suggest configures the optional LLM label suggester.
	Suggest SuggestConfig `yaml:"suggest"`

	// Workflow is a preset workflow name (e.g., "issue-label").
	Workflow string `yaml:"workflow,omitempty"`

	// Steps is a custom list of pipeline steps (overrides workflow).
	Steps []string `yaml:"steps,omitempty"`

	// Repositories lists the repositories this config applies to.
	Repositories []RepositoryConfig `yaml:"repositories,omitempty"`

	// BotUsers lists usernames whose events are ignored.
	BotUsers []string `yaml:"bot_users,omitempty"`
}

// RulesConfig locates the rule file. An empty path selects the
// embedded glideinwms rule set.
type RulesConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LabelingConfig holds classification behavior settings.
type LabelingConfig struct {
	// IncludeTitle prepends the issue title to the classified text.
	IncludeTitle bool `yaml:"include_title"`

	// MaxBodyBytes bounds the classified text size.
	MaxBodyBytes int `yaml:"max_body_bytes"`

	// MatchTimeoutSeconds bounds a single pattern evaluation on the
	// backtracking engine.
	MatchTimeoutSeconds int `yaml:"match_timeout_seconds"`

	// DryRun logs label changes instead of applying them.
	DryRun bool `yaml:"dry_run"`
}

// SuggestConfig holds LLM suggester settings.
type SuggestConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

// RepositoryConfig defines a repository and its settings.
type RepositoryConfig struct {
	Org     string `yaml:"org"`
	Repo    string `yaml:"repo"`
	Enabled bool   `yaml:"enabled"`
}

// MatchTimeout returns the configured pattern match timeout.
func (c *Config) MatchTimeout() time.Duration {
	return time.Duration(c.Labeling.MatchTimeoutSeconds) * time.Second
}

// DefaultConfig returns a config with all defaults applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a config file from the given path and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := parseRaw(data)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

// parseRaw parses config content after environment variable expansion.
func parseRaw(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// LoadWithInheritance loads a config and resolves the 'extends' chain.
// The fetcher function is used to retrieve remote configs.
func LoadWithInheritance(path string, fetcher func(ref string) ([]byte, error)) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if cfg.Extends == "" {
		return cfg, nil
	}

	parentData, err := fetcher(cfg.Extends)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch parent config '%s': %w", cfg.Extends, err)
	}

	parentCfg, err := parseRaw(parentData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse parent config: %w", err)
	}

	// Merge: child overrides parent
	merged := mergeConfigs(parentCfg, cfg)
	merged.applyDefaults()

	return merged, nil
}

// FindConfigPath searches for a config file in standard locations.
func FindConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	candidates := []string{
		".github/labeler.yaml",
		".github/labeler.yml",
		".labeler.yaml",
		".labeler.yml",
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}

	return ""
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	if c.Labeling.MaxBodyBytes == 0 {
		c.Labeling.MaxBodyBytes = 65536
	}
	if c.Labeling.MatchTimeoutSeconds == 0 {
		c.Labeling.MatchTimeoutSeconds = 2
	}
	if c.Suggest.Model == "" {
		c.Suggest.Model = "gemini-2.0-flash-lite"
	}
}

// mergeConfigs merges a child config onto a parent config.
// Non-zero values in child override parent.
func mergeConfigs(parent, child *Config) *Config {
	result := *parent

	if child.Workflow != "" {
		result.Workflow = child.Workflow
	}
	if len(child.Steps) > 0 {
		result.Steps = child.Steps
	}

	if child.Rules.Path != "" {
		result.Rules.Path = child.Rules.Path
	}

	if child.Labeling.MaxBodyBytes != 0 {
		result.Labeling.MaxBodyBytes = child.Labeling.MaxBodyBytes
	}
	if child.Labeling.MatchTimeoutSeconds != 0 {
		result.Labeling.MatchTimeoutSeconds = child.Labeling.MatchTimeoutSeconds
	}
	// Booleans: always take the child value so it can override parent
	// true -> false and vice versa.
	result.Labeling.IncludeTitle = child.Labeling.IncludeTitle
	result.Labeling.DryRun = child.Labeling.DryRun
	result.Suggest.Enabled = child.Suggest.Enabled

	if child.Suggest.APIKey != "" {
		result.Suggest.APIKey = child.Suggest.APIKey
	}
	if child.Suggest.Model != "" {
		result.Suggest.Model = child.Suggest.Model
	}

	// Repositories and bot users: child completely overrides if non-empty
	if len(child.Repositories) > 0 {
		result.Repositories = child.Repositories
	}
	if len(child.BotUsers) > 0 {
		result.BotUsers = child.BotUsers
	}

	return &result
}

// ParseExtendsRef parses "org/repo@branch" into components.
func ParseExtendsRef(ref string) (org, repo, branch, path string, err error) {
	// Format: org/repo@branch or org/repo@branch:path
	parts := strings.SplitN(ref, "@", 2)
	if len(parts) != 2 {
		return "", "", "", "", fmt.Errorf("invalid extends reference: %s (expected org/repo@branch)", ref)
	}

	orgRepo := strings.SplitN(parts[0], "/", 2)
	if len(orgRepo) != 2 {
		return "", "", "", "", fmt.Errorf("invalid extends reference: %s (expected org/repo)", ref)
	}

	org = orgRepo[0]
	repo = orgRepo[1]

	branchPath := strings.SplitN(parts[1], ":", 2)
	branch = branchPath[0]
	if len(branchPath) == 2 {
		path = branchPath[1]
	} else {
		path = ".github/labeler.yaml" // default path
	}

	return org, repo, branch, path, nil
}
