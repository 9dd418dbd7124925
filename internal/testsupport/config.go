package testsupport

import (
	"path/filepath"
	"testing"

	"litman/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.LLM.APIKey = "test"
	cfgVal.LLM.BaseURL = "http://127.0.0.1:0"
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Workflow.ReanalyzeOnStart = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithBaseURL points the LLM client at a test server.
func WithBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithShutdownGrace overrides the grace window, in seconds.
func WithShutdownGrace(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.ShutdownGraceSeconds = seconds
	}
}

// WithFastRetries caps analysis attempts and removes rate-limit waits so retry
// paths finish quickly. The backoff base stays at its smallest valid value.
func WithFastRetries(maxRetries int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Analysis.MaxRetries = maxRetries
		b.cfg.Analysis.BackoffBaseSeconds = 1
		b.cfg.Analysis.RateLimitPaddingSeconds = 0
		b.cfg.Analysis.DefaultRetryAfterSeconds = 0
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
