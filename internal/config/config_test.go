package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"litman/internal/config"
	"litman/internal/testsupport"
)

func TestLoadDefaultConfigUsesEnvKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("LITMAN_API_KEY", "test-key")
	t.Setenv("MOONSHOT_API_KEY", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "litman")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.ArtifactDir() != filepath.Join(wantData, "artifacts") {
		t.Fatalf("unexpected artifact dir: %q", cfg.ArtifactDir())
	}
	if cfg.LLM.APIKey != "test-key" {
		t.Fatalf("expected api key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Analysis.MaxRetries != 10 {
		t.Fatalf("expected 10 analysis retries, got %d", cfg.Analysis.MaxRetries)
	}
	if cfg.Ingestion.FallbackChars != 2000 {
		t.Fatalf("expected fallback budget 2000, got %d", cfg.Ingestion.FallbackChars)
	}
	if cfg.ShutdownGrace().Seconds() != 3 {
		t.Fatalf("expected 3s grace window, got %s", cfg.ShutdownGrace())
	}
	if cfg.ConversationTimeout().Seconds() != 60 {
		t.Fatalf("expected 60s conversation timeout, got %s", cfg.ConversationTimeout())
	}
}

func TestLoadFallsBackToLegacyKeyEnv(t *testing.T) {
	t.Setenv("LITMAN_API_KEY", "")
	t.Setenv("MOONSHOT_API_KEY", "legacy-key")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "legacy-key" {
		t.Fatalf("expected legacy key, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadMissingAPIKeyFails(t *testing.T) {
	t.Setenv("LITMAN_API_KEY", "")
	t.Setenv("MOONSHOT_API_KEY", "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected missing api key error")
	}
	if !strings.Contains(err.Error(), "llm.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadCustomFile(t *testing.T) {
	t.Setenv("LITMAN_API_KEY", "")
	t.Setenv("MOONSHOT_API_KEY", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"data_dir": filepath.Join(dir, "data"),
			"log_dir":  filepath.Join(dir, "logs"),
		},
		"llm": map[string]any{
			"api_key":  "file-key",
			"base_url": "https://example.test/v1/",
			"model":    "demo",
		},
		"analysis": map[string]any{
			"max_retries": 3,
		},
		"workflow": map[string]any{
			"target_language": "zh-Hans",
		},
		"logging": map[string]any{
			"format": "JSON",
		},
	}
	encoded, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.LLM.BaseURL != "https://example.test/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.LLM.BaseURL)
	}
	if cfg.Analysis.MaxRetries != 3 {
		t.Fatalf("expected override to apply, got %d", cfg.Analysis.MaxRetries)
	}
	if cfg.Analysis.TimeoutSeconds != 30 {
		t.Fatalf("expected untouched default, got %d", cfg.Analysis.TimeoutSeconds)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized format, got %q", cfg.Logging.Format)
	}
	if cfg.Workflow.TargetLanguage != "Chinese" {
		t.Fatalf("expected language tag to map to a display name, got %q", cfg.Workflow.TargetLanguage)
	}
}

func TestValidateRejectsNonPositiveRetries(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "key"
	cfg.Analysis.MaxRetries = 0
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "analysis.max_retries") {
		t.Fatalf("expected max_retries error, got %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("LITMAN_API_KEY", "sample-key")
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Workflow.TargetLanguage != "Chinese" {
		t.Fatalf("unexpected target language %q", cfg.Workflow.TargetLanguage)
	}
}

func TestEncodeRedactsAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "secret"
	out, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if strings.Contains(string(out), "secret") {
		t.Fatalf("expected api key to be redacted:\n%s", out)
	}
	if cfg.LLM.APIKey != "secret" {
		t.Fatal("Encode must not mutate the receiver")
	}
}

func TestValidateRejectsRelativeNtfyTopic(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "key"
	cfg.Notifications.NtfyTopic = "my-topic"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "notifications.ntfy_topic") {
		t.Fatalf("expected ntfy topic validation error, got %v", err)
	}
}

func TestFastRetryTestConfigLoads(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFastRetries(1))
	if err := cfg.Validate(); err != nil {
		t.Fatalf("fast-retry config should validate: %v", err)
	}

	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "litman.toml")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load fast-retry config: %v", err)
	}
	if loaded.Analysis.MaxRetries != 1 || loaded.Analysis.BackoffBaseSeconds != 1 {
		t.Fatalf("unexpected analysis settings %+v", loaded.Analysis)
	}
}
