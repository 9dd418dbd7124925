package preflight

import (
	"context"

	"litman/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config. The LLM check is
// skipped when offline is true.
func RunAll(ctx context.Context, cfg *config.Config, offline bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Artifact directory", cfg.ArtifactDir()),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckFreeSpace("Free space", cfg.Paths.DataDir, cfg.Workflow.MinFreeMiB),
		CheckNotificationsFromConfig(cfg),
	}
	if !offline {
		results = append(results, CheckLLM(ctx, "Completion API", cfg.LLM))
	}
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
