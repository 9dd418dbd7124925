package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"litman/internal/config"
	"litman/internal/library"
	"litman/internal/logging"
	"litman/internal/notifications"
	"litman/internal/session"
)

// closeTimeout bounds the session shutdown after the command body returns.
// The workflow itself gives up after its grace window; this only guards the
// store flush.
const closeTimeout = 30 * time.Second

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// jobReport counts the outcomes a command cares about while its session runs.
type jobReport struct {
	failed  atomic.Int32
	updated atomic.Int32
}

func (r *jobReport) err() error {
	if n := r.failed.Load(); n > 0 {
		return fmt.Errorf("%d job(s) failed", n)
	}
	return nil
}

// withSession opens a session, runs fn, waits for every lane to go idle, and
// shuts the session down. SIGINT and SIGTERM cut the wait short.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(context.Context, *session.Session) error) (*jobReport, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger()
	if err != nil {
		return nil, err
	}

	report := &jobReport{}
	errOut := cmd.ErrOrStderr()
	colorize := shouldColorize(errOut)
	printer := notifications.Func(func(e notifications.Event) {
		switch e.Type {
		case notifications.EventJobFailed:
			report.failed.Add(1)
		case notifications.EventItemUpdated:
			report.updated.Add(1)
		default:
			return
		}
		fmt.Fprintln(errOut, renderEventLine(e, colorize))
	})

	s, err := session.Open(cfg, logger, session.WithObserver(printer))
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := s.Start(ctx)
	if runErr == nil {
		runErr = fn(ctx, s)
	}
	switch {
	case runErr == nil:
		runErr = s.Manager().WaitIdle(ctx)
	case errors.Is(runErr, errNothingToDo) && s.Resumed() > 0:
		// Start queued analyses the command itself did not ask for.
		if err := s.Manager().WaitIdle(ctx); err != nil {
			runErr = err
		}
	}

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := s.Close(closeCtx); err != nil && runErr == nil {
		runErr = err
	}
	return report, interruptedError(ctx, runErr)
}

// interruptedError replaces the cancellation error a signal leaves behind.
func interruptedError(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return errInterrupted
	}
	return err
}

// withStore opens the item store without taking the session lock.
func (c *commandContext) withStore(fn func(*library.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := library.Open(cfg)
	if err != nil {
		return fmt.Errorf("open item store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func parseItemID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", arg)
	}
	return id, nil
}

func lookupItem(ctx context.Context, store *library.Store, id int64) (*library.Item, error) {
	item, err := store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d not found", id)
	}
	return item, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

var (
	errNothingToDo = errors.New("nothing to do")
	errInterrupted = errors.New("interrupted; unfinished work was cancelled")
)
