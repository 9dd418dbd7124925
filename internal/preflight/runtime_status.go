package preflight

import (
	"net/url"
	"strings"

	"litman/internal/config"
)

// CheckNotificationsFromConfig reports whether ntfy delivery is configured.
// An unset topic is a pass; notifications are optional.
func CheckNotificationsFromConfig(cfg *config.Config) Result {
	const name = "Notifications"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	parsed, err := url.Parse(topic)
	if err != nil || parsed.Host == "" {
		return Result{Name: name, Detail: "invalid ntfy topic URL"}
	}
	return Result{Name: name, Passed: true, Detail: "ntfy via " + parsed.Host}
}
