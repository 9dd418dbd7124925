package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"litman/internal/config"
	"litman/internal/services/llm"
)

// CheckLLM verifies that the completion API is reachable and the key is valid.
// It makes a single attempt with a 30-second timeout.
func CheckLLM(ctx context.Context, name string, cfg config.LLM) Result {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	})
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", client.Endpoint())}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least minMiB
// available to unprivileged users. A non-positive minimum always passes.
func CheckFreeSpace(name, path string, minMiB int) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	availMiB := uint64(stat.Bavail) * uint64(stat.Bsize) / (1 << 20)
	if minMiB > 0 && availMiB < uint64(minMiB) {
		return Result{Name: name, Detail: fmt.Sprintf("%d MiB available, %d MiB required", availMiB, minMiB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d MiB available", availMiB)}
}

// summarizeLLMError produces a human-readable summary for health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case 401, 403:
			return "auth failed (invalid api key)"
		}
		return fmt.Sprintf("health check failed (%d)", statusErr.StatusCode)
	}
	return err.Error()
}
