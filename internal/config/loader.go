package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.logtriage.yaml",               // Project-specific config (highest priority)
	"~/.config/logtriage/config.yaml", // User config
	"/etc/logtriage/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.logtriage.yaml
// 4. ~/.config/logtriage/config.yaml
// 5. /etc/logtriage/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Load from standard paths lowest priority first so later files win.
		paths := make([]string, len(l.configPaths))
		copy(paths, l.configPaths)
		for i := len(paths)/2 - 1; i >= 0; i-- {
			opp := len(paths) - 1 - i
			paths[i], paths[opp] = paths[opp], paths[i]
		}

		for _, path := range paths {
			expandedPath := expandPath(path)
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file and merges it with existing config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() before reaching here
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	mergeConfigs(config, &fileConfig)

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Provider credential variables without the LOGTRIAGE_ prefix are accepted
// as fallbacks so .env files written for the advisory services keep working.
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Input Config
		"LOGTRIAGE_INPUT_STRICT":    func(v string) error { return parseBool(v, &config.Input.Strict) },
		"LOGTRIAGE_INPUT_MIN_LEVEL": func(v string) error { config.Input.MinLevel = v; return nil },

		// Classifier Config
		"LOGTRIAGE_CLASSIFIER_MAX_EXAMPLES":         func(v string) error { return parseInt(v, &config.Classifier.MaxExamples) },
		"LOGTRIAGE_CLASSIFIER_MAX_EXAMPLE_LENGTH":   func(v string) error { return parseInt(v, &config.Classifier.MaxExampleLength) },
		"LOGTRIAGE_CLASSIFIER_ESCALATION_THRESHOLD": func(v string) error { return parseInt(v, &config.Classifier.EscalationThreshold) },

		// AI Config
		"LOGTRIAGE_AI_PROVIDER":    func(v string) error { config.AI.Provider = v; return nil },
		"LOGTRIAGE_AI_MODEL":       func(v string) error { config.AI.Model = v; return nil },
		"LOGTRIAGE_AI_AUTH_URL":    func(v string) error { config.AI.AuthURL = v; return nil },
		"LOGTRIAGE_AI_BASE_URL":    func(v string) error { config.AI.BaseURL = v; return nil },
		"LOGTRIAGE_AI_AUTH_KEY":    func(v string) error { config.AI.AuthKey = v; return nil },
		"LOGTRIAGE_AI_CLIENT_ID":   func(v string) error { config.AI.ClientID = v; return nil },
		"LOGTRIAGE_AI_SCOPE":       func(v string) error { config.AI.Scope = v; return nil },
		"LOGTRIAGE_AI_API_KEY":     func(v string) error { config.AI.APIKey = v; return nil },
		"LOGTRIAGE_AI_TEMPERATURE": func(v string) error { return parseFloat(v, &config.AI.Temperature) },
		"LOGTRIAGE_AI_MAX_TOKENS":  func(v string) error { return parseInt(v, &config.AI.MaxTokens) },
		"LOGTRIAGE_AI_TIMEOUT":     func(v string) error { return parseDuration(v, &config.AI.Timeout) },
		"LOGTRIAGE_AI_INSECURE_SKIP_VERIFY": func(v string) error {
			return parseBool(v, &config.AI.InsecureSkipVerify)
		},

		// Output Config
		"LOGTRIAGE_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"LOGTRIAGE_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"LOGTRIAGE_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"LOGTRIAGE_OUTPUT_PATH":           func(v string) error { config.Output.Path = v; return nil },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// Credential fallbacks used by existing .env files.
	if config.AI.AuthKey == "" {
		config.AI.AuthKey = os.Getenv("GIGACHAT_AUTH_KEY")
	}
	if config.AI.ClientID == "" {
		config.AI.ClientID = os.Getenv("GIGACHAT_CLIENT_ID")
	}
	if config.AI.APIKey == "" {
		config.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mergeConfigs merges source config into destination config.
// Only non-zero values from source overwrite destination.
func mergeConfigs(dst, src *Config) {
	if src.Version != "" {
		dst.Version = src.Version
	}

	mergeInputConfig(&dst.Input, &src.Input)
	mergeClassifierConfig(&dst.Classifier, &src.Classifier)
	mergeAIConfig(&dst.AI, &src.AI)
	mergeOutputConfig(&dst.Output, &src.Output)
}

func mergeInputConfig(dst, src *InputConfig) {
	if src.Strict {
		dst.Strict = src.Strict
	}
	if src.MinLevel != "" {
		dst.MinLevel = src.MinLevel
	}
}

func mergeClassifierConfig(dst, src *ClassifierConfig) {
	if src.MaxExamples != 0 {
		dst.MaxExamples = src.MaxExamples
	}
	if src.MaxExampleLength != 0 {
		dst.MaxExampleLength = src.MaxExampleLength
	}
	if src.EscalationThreshold != 0 {
		dst.EscalationThreshold = src.EscalationThreshold
	}
}

func mergeAIConfig(dst, src *AIConfig) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.AuthURL != "" {
		dst.AuthURL = src.AuthURL
	}
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.AuthKey != "" {
		dst.AuthKey = src.AuthKey
	}
	if src.ClientID != "" {
		dst.ClientID = src.ClientID
	}
	if src.Scope != "" {
		dst.Scope = src.Scope
	}
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.Temperature != 0 {
		dst.Temperature = src.Temperature
	}
	if src.MaxTokens != 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
	if src.InsecureSkipVerify {
		dst.InsecureSkipVerify = src.InsecureSkipVerify
	}
}

func mergeOutputConfig(dst, src *OutputConfig) {
	if src.DefaultFormat != "" {
		dst.DefaultFormat = src.DefaultFormat
	}
	if src.ColorMode != "" {
		dst.ColorMode = src.ColorMode
	}
	if src.Verbose {
		dst.Verbose = src.Verbose
	}
	if src.Path != "" {
		dst.Path = src.Path
	}
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseFloat(s string, dst *float64) error {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
