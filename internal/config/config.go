package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// LLM contains the chat-completion endpoint settings shared by every lane.
type LLM struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	Referer string `toml:"referer"`
	Title   string `toml:"title"`
}

// Ingestion contains settings for the content refinement request.
type Ingestion struct {
	TimeoutSeconds int     `toml:"timeout_seconds"`
	FallbackChars  int     `toml:"fallback_chars"`
	MaxTokens      int     `toml:"max_tokens"`
	Temperature    float64 `toml:"temperature"`
}

// Analysis contains the retry policy and request shape for document analysis.
type Analysis struct {
	TimeoutSeconds           int     `toml:"timeout_seconds"`
	MaxRetries               int     `toml:"max_retries"`
	BackoffBaseSeconds       int     `toml:"backoff_base_seconds"`
	RateLimitPaddingSeconds  int     `toml:"rate_limit_padding_seconds"`
	DefaultRetryAfterSeconds int     `toml:"default_retry_after_seconds"`
	MaxTokens                int     `toml:"max_tokens"`
	Temperature              float64 `toml:"temperature"`
}

// Conversation contains settings for chat and translation requests.
type Conversation struct {
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MaxTokens      int     `toml:"max_tokens"`
	Temperature    float64 `toml:"temperature"`
}

// Workflow contains lane and shutdown timing.
type Workflow struct {
	ShutdownGraceSeconds int    `toml:"shutdown_grace_seconds"`
	ShutdownPollMillis   int    `toml:"shutdown_poll_millis"`
	ReanalyzeOnStart     bool   `toml:"reanalyze_on_start"`
	TargetLanguage       string `toml:"target_language"`
	MinFreeMiB           int    `toml:"min_free_mib"`
}

// Notifications contains optional push notification settings.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for litman.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - LLM: remote chat-completion endpoint
//   - Ingestion: refinement request and fallback budget
//   - Analysis: retry policy for document analysis
//   - Conversation: chat and translation requests
//   - Workflow: shutdown timing and startup behavior
//   - Notifications: optional ntfy push for finished and failed jobs
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	LLM           LLM           `toml:"llm"`
	Ingestion     Ingestion     `toml:"ingestion"`
	Analysis      Analysis      `toml:"analysis"`
	Conversation  Conversation  `toml:"conversation"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("litman.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	redacted := *c
	if redacted.LLM.APIKey != "" {
		redacted.LLM.APIKey = "********"
	}
	out, err := toml.Marshal(redacted)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}

// EnsureDirectories creates the data, artifact, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.ArtifactDir(), c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ArtifactDir returns the directory holding per-item content, analysis, and chat files.
func (c *Config) ArtifactDir() string {
	return filepath.Join(c.Paths.DataDir, "artifacts")
}

// DatabasePath returns the location of the item store database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "library.db")
}

// LockPath returns the single-writer lock file guarding the data directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "litman.lock")
}

// IngestionTimeout returns the call-scoped timeout for refinement requests.
func (c *Config) IngestionTimeout() time.Duration {
	return time.Duration(c.Ingestion.TimeoutSeconds) * time.Second
}

// AnalysisTimeout returns the call-scoped timeout for analysis attempts.
func (c *Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.Analysis.TimeoutSeconds) * time.Second
}

// ConversationTimeout returns the call-scoped timeout for chat and translation requests.
func (c *Config) ConversationTimeout() time.Duration {
	return time.Duration(c.Conversation.TimeoutSeconds) * time.Second
}

// ShutdownGrace returns how long running workers get to finish after a shutdown request.
func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.Workflow.ShutdownGraceSeconds) * time.Second
}

// NotificationTimeout returns the per-request timeout for ntfy deliveries.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeoutSeconds) * time.Second
}

// ShutdownPoll returns the lane polling interval used during the grace window.
func (c *Config) ShutdownPoll() time.Duration {
	return time.Duration(c.Workflow.ShutdownPollMillis) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
