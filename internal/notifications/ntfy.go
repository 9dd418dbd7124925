package notifications

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"litman/internal/config"
	"litman/internal/logging"
)

const (
	userAgent      = "litman/0.1.0"
	ntfyQueueDepth = 32
)

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

// NtfyObserver pushes finished analyses and failed jobs to an ntfy topic.
// Messages are queued and sent from a background goroutine; when the queue is
// full new messages are dropped.
type NtfyObserver struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger

	queue     chan payload
	done      chan struct{}
	closeOnce sync.Once
}

// NewNtfyObserver builds an ntfy observer when a topic is configured, and a
// no-op observer otherwise.
func NewNtfyObserver(cfg *config.Config, logger *slog.Logger) Observer {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return Nop()
	}
	timeout := cfg.NotificationTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	n := &NtfyObserver{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		logger:   logging.NewComponentLogger(logger, "ntfy"),
		queue:    make(chan payload, ntfyQueueDepth),
		done:     make(chan struct{}),
	}
	go n.loop()
	return n
}

// Notify queues a push message for events worth interrupting the user for.
func (n *NtfyObserver) Notify(e Event) {
	data, ok := formatEvent(e)
	if !ok {
		return
	}
	select {
	case n.queue <- data:
	default:
		n.logger.Debug("ntfy queue full, dropping notification", logging.String("title", data.title))
	}
}

// Close stops accepting messages and waits for queued ones to be sent.
func (n *NtfyObserver) Close() {
	n.closeOnce.Do(func() {
		close(n.queue)
		<-n.done
	})
}

func (n *NtfyObserver) loop() {
	defer close(n.done)
	for data := range n.queue {
		if err := n.send(context.Background(), data); err != nil {
			logging.WarnWithContext(n.logger, "ntfy delivery failed", "notification_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
				logging.String(logging.FieldImpact, "push notification was not delivered"),
			)
		}
	}
}

func formatEvent(e Event) (payload, bool) {
	switch {
	case e.Type == EventItemUpdated && e.Artifact == "analysis":
		return payload{
			title:   "litman - Analysis Ready",
			message: fmt.Sprintf("Analysis finished for %s", e.Subject()),
			tags:    []string{"litman", "analysis"},
		}, true
	case e.Type == EventJobFailed:
		return payload{
			title:    "litman - Job Failed",
			message:  fmt.Sprintf("%s job failed for %s\n%s", e.Lane, e.Subject(), e.Message),
			tags:     []string{"litman", "error", string(e.Lane)},
			priority: "high",
		}, true
	default:
		return payload{}, false
	}
}

func (n *NtfyObserver) send(ctx context.Context, data payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
