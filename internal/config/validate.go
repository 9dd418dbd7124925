package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateLanes(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("llm.api_key is required. Set %s (or %s) or edit %s (create with 'litman config init')",
			apiKeyEnv, legacyAPIKeyEnv, defaultPath)
	}
	parsed, err := url.Parse(c.LLM.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("llm.base_url must be an absolute URL, got %q", c.LLM.BaseURL)
	}
	return nil
}

func (c *Config) validateLanes() error {
	if err := ensurePositiveMap(map[string]int{
		"ingestion.timeout_seconds":     c.Ingestion.TimeoutSeconds,
		"ingestion.fallback_chars":      c.Ingestion.FallbackChars,
		"ingestion.max_tokens":          c.Ingestion.MaxTokens,
		"analysis.timeout_seconds":      c.Analysis.TimeoutSeconds,
		"analysis.max_retries":          c.Analysis.MaxRetries,
		"analysis.backoff_base_seconds": c.Analysis.BackoffBaseSeconds,
		"analysis.max_tokens":           c.Analysis.MaxTokens,
		"conversation.timeout_seconds":  c.Conversation.TimeoutSeconds,
		"conversation.max_tokens":       c.Conversation.MaxTokens,
	}); err != nil {
		return err
	}
	if c.Analysis.RateLimitPaddingSeconds < 0 {
		return errors.New("analysis.rate_limit_padding_seconds must be >= 0")
	}
	if c.Analysis.DefaultRetryAfterSeconds < 0 {
		return errors.New("analysis.default_retry_after_seconds must be >= 0")
	}
	for key, value := range map[string]float64{
		"ingestion.temperature":    c.Ingestion.Temperature,
		"analysis.temperature":     c.Analysis.Temperature,
		"conversation.temperature": c.Conversation.Temperature,
	} {
		if value < 0 || value > 2 {
			return fmt.Errorf("%s must be between 0 and 2", key)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.ShutdownGraceSeconds <= 0 {
		return errors.New("workflow.shutdown_grace_seconds must be positive")
	}
	if c.Workflow.MinFreeMiB < 0 {
		return errors.New("workflow.min_free_mib must be >= 0")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be an absolute URL, got %q", c.Notifications.NtfyTopic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
