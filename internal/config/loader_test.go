package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, `
input:
  strict: true
  min_level: error
classifier:
  max_examples: 3
ai:
  provider: openai
  model: gpt-4o
  timeout: 15s
output:
  default_format: csv
`)

	cfg, err := NewLoader().LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !cfg.Input.Strict || cfg.Input.MinLevel != "error" {
		t.Errorf("input section not applied: %+v", cfg.Input)
	}
	if cfg.Classifier.MaxExamples != 3 {
		t.Errorf("MaxExamples = %d", cfg.Classifier.MaxExamples)
	}
	if cfg.Classifier.MaxExampleLength != 200 {
		t.Errorf("unset fields must keep defaults, got %d", cfg.Classifier.MaxExampleLength)
	}
	if cfg.AI.Provider != "openai" || cfg.AI.Model != "gpt-4o" {
		t.Errorf("ai section not applied: %+v", cfg.AI)
	}
	if cfg.AI.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v", cfg.AI.Timeout)
	}
	if cfg.Output.DefaultFormat != "csv" {
		t.Errorf("DefaultFormat = %q", cfg.Output.DefaultFormat)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
ai:
  provider: gigachat
  model: GigaChat
`)
	t.Setenv("LOGTRIAGE_AI_MODEL", "GigaChat-Pro")
	t.Setenv("LOGTRIAGE_INPUT_MIN_LEVEL", "error")
	t.Setenv("LOGTRIAGE_OUTPUT_VERBOSE", "true")

	cfg, err := NewLoader().LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.AI.Model != "GigaChat-Pro" {
		t.Errorf("env override must win over file, got %q", cfg.AI.Model)
	}
	if cfg.Input.MinLevel != "error" || !cfg.Output.Verbose {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Input, cfg.Output)
	}
}

func TestLoadConfigCredentialFallbacks(t *testing.T) {
	t.Setenv("GIGACHAT_AUTH_KEY", "creds")
	t.Setenv("GIGACHAT_CLIENT_ID", "client-1")

	cfg, err := NewLoader().LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.AI.AuthKey != "creds" || cfg.AI.ClientID != "client-1" {
		t.Errorf("credential fallbacks not applied: %+v", cfg.AI)
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	path := writeConfigFile(t, `
ai:
  provider: anthropic
`)

	if _, err := NewLoader().LoadConfig(path); err == nil {
		t.Error("unknown provider must fail validation")
	}
}

func TestLoadConfigInvalidEnvValue(t *testing.T) {
	t.Setenv("LOGTRIAGE_AI_TIMEOUT", "soon")

	if _, err := NewLoader().LoadConfig(""); err == nil {
		t.Error("unparseable env duration must fail")
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{path: "config.yaml"},
		{path: "config.yml"},
		{path: "/home/user/.config/logtriage/config.yaml"},
		{path: "../escape.yaml", wantErr: true},
		{path: "config.json", wantErr: true},
		{path: "/proc/self/environ.yaml", wantErr: true},
	}

	for _, tt := range tests {
		err := validateConfigPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateConfigPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}
