// Package featureflags evaluates per-user rollout switches configured as
// "name=value" pairs, e.g. "activity_stream=on,watch_history=25%".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flags.
const (
	// ActivityStream gates the realtime /ws endpoint.
	ActivityStream = "activity_stream"
	// WatchHistory gates recording views into a viewer's history.
	WatchHistory = "watch_history"
)

// Defaults apply when the configuration does not mention a flag.
var Defaults = map[string]string{
	ActivityStream: "on",
	WatchHistory:   "on",
}

// Manager evaluates feature flags.
type Manager struct {
	flags map[string]string
}

// NewManager parses raw on top of Defaults. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	out := make(map[string]string, len(Defaults))
	for k, v := range Defaults {
		out[k] = v
	}

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return &Manager{flags: out}
}

// Enabled reports whether name is on for userID. Values are on/true/1,
// off/false/0 or a percentage rollout that is stable per user. Anonymous
// callers (userID 0) only see fully rolled out flags. A nil Manager uses
// Defaults.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		m = NewManager("")
	}
	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if userID == 0 {
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Raw returns a copy of the configured values.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot evaluates every flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
