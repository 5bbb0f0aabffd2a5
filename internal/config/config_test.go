package config

import (
	"strings"
	"testing"
	"time"

	"github.com/logtriage/logtriage/internal/common"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Input.Strict {
		t.Error("default ingestion must be lenient")
	}
	if cfg.Input.MinLevel != "warn" {
		t.Errorf("MinLevel = %q", cfg.Input.MinLevel)
	}
	if cfg.Classifier.MaxExamples != 5 || cfg.Classifier.MaxExampleLength != 200 {
		t.Errorf("unexpected classifier defaults: %+v", cfg.Classifier)
	}
	if cfg.Classifier.EscalationThreshold != 50 {
		t.Errorf("EscalationThreshold = %d", cfg.Classifier.EscalationThreshold)
	}
	if cfg.AI.Provider != "gigachat" || cfg.AI.Scope != "GIGACHAT_API_PERS" {
		t.Errorf("unexpected AI defaults: %+v", cfg.AI)
	}
	if cfg.AI.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v", cfg.AI.Timeout)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("DefaultFormat = %q", cfg.Output.DefaultFormat)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid openai provider",
			modify: func(c *Config) { c.AI.Provider = "openai" },
		},
		{
			name:   "empty provider disables advisory",
			modify: func(c *Config) { c.AI.Provider = "" },
		},
		{
			name:    "unknown provider",
			modify:  func(c *Config) { c.AI.Provider = "anthropic" },
			wantErr: "invalid AI provider",
		},
		{
			name:    "unknown min level",
			modify:  func(c *Config) { c.Input.MinLevel = "loud" },
			wantErr: "invalid min_level",
		},
		{
			name:    "zero max examples",
			modify:  func(c *Config) { c.Classifier.MaxExamples = 0 },
			wantErr: "max_examples",
		},
		{
			name:    "zero escalation threshold",
			modify:  func(c *Config) { c.Classifier.EscalationThreshold = 0 },
			wantErr: "escalation_threshold",
		},
		{
			name:    "unknown output format",
			modify:  func(c *Config) { c.Output.DefaultFormat = "xml" },
			wantErr: "invalid output format",
		},
		{
			name:    "unknown color mode",
			modify:  func(c *Config) { c.Output.ColorMode = "rainbow" },
			wantErr: "invalid color mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestMinLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MinLogLevel() != common.LevelWarn {
		t.Errorf("MinLogLevel() = %v", cfg.MinLogLevel())
	}

	cfg.Input.MinLevel = "error"
	if cfg.MinLogLevel() != common.LevelError {
		t.Errorf("MinLogLevel() = %v", cfg.MinLogLevel())
	}
}

func TestProviderConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AI.AuthKey = "base64creds"
	cfg.AI.ClientID = "client-1"

	pc := cfg.ProviderConfig()
	if pc.Type != "gigachat" {
		t.Errorf("Type = %q", pc.Type)
	}
	if pc.APIKey != "base64creds" {
		t.Errorf("gigachat auth key must flow into APIKey, got %q", pc.APIKey)
	}
	if pc.ClientID != "client-1" || pc.Scope != "GIGACHAT_API_PERS" {
		t.Errorf("unexpected provider config: %+v", pc)
	}

	cfg.AI.Provider = "openai"
	cfg.AI.APIKey = "sk-test"
	if pc := cfg.ProviderConfig(); pc.APIKey != "sk-test" {
		t.Errorf("explicit api_key must win, got %q", pc.APIKey)
	}
}
