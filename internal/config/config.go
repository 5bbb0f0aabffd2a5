package config

import (
	"fmt"
	"time"

	"github.com/logtriage/logtriage/internal/ai"
	"github.com/logtriage/logtriage/internal/common"
)

// Config holds the complete application configuration
type Config struct {
	Version    string           `yaml:"version" json:"version"`
	Input      InputConfig      `yaml:"input" json:"input"`
	Classifier ClassifierConfig `yaml:"classifier" json:"classifier"`
	AI         AIConfig         `yaml:"ai" json:"ai"`
	Output     OutputConfig     `yaml:"output" json:"output"`
}

// InputConfig configures log ingestion
type InputConfig struct {
	Strict   bool   `yaml:"strict" json:"strict"`       // fail on malformed timestamps instead of skipping
	MinLevel string `yaml:"min_level" json:"min_level"` // lowest level kept (warn|error|...)
}

// ClassifierConfig configures grouping and criticality assignment
type ClassifierConfig struct {
	MaxExamples         int `yaml:"max_examples" json:"max_examples"`                 // distinct raw examples kept per group
	MaxExampleLength    int `yaml:"max_example_length" json:"max_example_length"`     // runes per kept example
	EscalationThreshold int `yaml:"escalation_threshold" json:"escalation_threshold"` // warn groups above this count become high
}

// AIConfig configures the advisory provider
type AIConfig struct {
	Provider           string        `yaml:"provider" json:"provider"` // gigachat|openai, empty disables the advisory call
	Model              string        `yaml:"model" json:"model"`
	AuthURL            string        `yaml:"auth_url" json:"auth_url"` // gigachat OAuth endpoint
	BaseURL            string        `yaml:"base_url" json:"base_url"`
	AuthKey            string        `yaml:"auth_key" json:"auth_key"` // gigachat base64 credentials
	ClientID           string        `yaml:"client_id" json:"client_id"`
	Scope              string        `yaml:"scope" json:"scope"`
	APIKey             string        `yaml:"api_key" json:"api_key"` // openai bearer key
	Temperature        float64       `yaml:"temperature" json:"temperature"`
	MaxTokens          int           `yaml:"max_tokens" json:"max_tokens"`
	Timeout            time.Duration `yaml:"timeout" json:"timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify" json:"insecure_skip_verify"`
}

// OutputConfig configures report formatting
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // json|csv|markdown|terminal
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`
	Path          string `yaml:"path" json:"path"` // report file destination, empty writes to stdout
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Input: InputConfig{
			Strict:   false,
			MinLevel: "warn",
		},
		Classifier: ClassifierConfig{
			MaxExamples:         5,
			MaxExampleLength:    200,
			EscalationThreshold: 50,
		},
		AI: AIConfig{
			Provider:    "gigachat",
			Scope:       "GIGACHAT_API_PERS",
			Temperature: 0.3,
			Timeout:     60 * time.Second,
		},
		Output: OutputConfig{
			DefaultFormat: "json",
			ColorMode:     "auto",
			Verbose:       false,
		},
	}
}

// MinLogLevel returns the parsed ingestion floor.
func (c *Config) MinLogLevel() common.LogLevel {
	return common.ParseLogLevel(c.Input.MinLevel)
}

// ProviderConfig converts the AI section into the provider-facing form.
func (c *Config) ProviderConfig() *ai.ProviderConfig {
	return &ai.ProviderConfig{
		Type:               c.AI.Provider,
		APIKey:             firstNonEmpty(c.AI.APIKey, c.AI.AuthKey),
		BaseURL:            c.AI.BaseURL,
		AuthURL:            c.AI.AuthURL,
		ClientID:           c.AI.ClientID,
		Scope:              c.AI.Scope,
		Model:              c.AI.Model,
		MaxTokens:          c.AI.MaxTokens,
		Temperature:        c.AI.Temperature,
		Timeout:            c.AI.Timeout,
		InsecureSkipVerify: c.AI.InsecureSkipVerify,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateInputConfig(); err != nil {
		return err
	}
	if err := c.validateClassifierConfig(); err != nil {
		return err
	}
	if err := c.validateAIConfig(); err != nil {
		return err
	}
	return c.validateOutputConfig()
}

func (c *Config) validateInputConfig() error {
	if c.Input.MinLevel == "" {
		return nil
	}
	validLevels := map[string]bool{
		"debug": true,
		"trace": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}
	if !validLevels[c.Input.MinLevel] {
		return fmt.Errorf("invalid min_level: %s (must be one of: debug, trace, info, warn, error, fatal)", c.Input.MinLevel)
	}
	return nil
}

func (c *Config) validateClassifierConfig() error {
	if c.Classifier.MaxExamples < 1 {
		return fmt.Errorf("max_examples must be greater than 0")
	}
	if c.Classifier.MaxExampleLength < 1 {
		return fmt.Errorf("max_example_length must be greater than 0")
	}
	if c.Classifier.EscalationThreshold < 1 {
		return fmt.Errorf("escalation_threshold must be greater than 0")
	}
	return nil
}

func (c *Config) validateAIConfig() error {
	if c.AI.Provider != "" {
		validProviders := map[string]bool{
			"gigachat": true,
			"openai":   true,
		}
		if !validProviders[c.AI.Provider] {
			return fmt.Errorf("invalid AI provider: %s (must be one of: gigachat, openai)", c.AI.Provider)
		}
	}
	if c.AI.Timeout < 0 {
		return fmt.Errorf("ai timeout must be non-negative")
	}
	return nil
}

func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"csv":      true,
			"markdown": true,
			"md":       true,
			"terminal": true,
			"text":     true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, csv, markdown, terminal)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
