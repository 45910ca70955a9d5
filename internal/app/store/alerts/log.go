// internal/app/store/alerts/log.go
package alerts

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/drivershield/shield360/internal/app/system/normalize"
	"github.com/drivershield/shield360/internal/app/system/persist"
)

// Fallback labels used when a panic payload arrives without them. The
// button must never be rejected for missing metadata.
const (
	FallbackDriver     = "Driver"
	FallbackOccurrence = "Unspecified occurrence"
)

// Alert is one received panic event. Coordinates are kept verbatim when
// present and omitted entirely when the device had no fix.
type Alert struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Driver     string    `json:"driver"`
	Occurrence string    `json:"occurrence"`
	Lat        *float64  `json:"lat,omitempty"`
	Lng        *float64  `json:"lng,omitempty"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
	IP         string    `json:"ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

// Incoming carries the fields of a panic request before normalization.
type Incoming struct {
	Driver     string
	Occurrence string
	Lat        *float64
	Lng        *float64
	Accuracy   *float64
	IP         string
	UserAgent  string
}

// Log is the append-mostly feed of received alerts, newest last in
// storage and newest first on List. Old entries beyond the retention
// cap are dropped on append.
type Log struct {
	mu        sync.Mutex
	file      *persist.File
	logger    *zap.Logger
	sanitizer *bluemonday.Policy
	retention int
	alerts    []Alert
	nextID    int64
}

// NewLog loads the alert snapshot from file. A missing or corrupt
// snapshot starts an empty feed.
func NewLog(file *persist.File, retention int, logger *zap.Logger) (*Log, error) {
	l := &Log{
		file:      file,
		logger:    logger,
		sanitizer: bluemonday.StrictPolicy(),
		retention: retention,
		nextID:    1,
	}
	if err := file.Load(&l.alerts); err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}
	for _, a := range l.alerts {
		if a.ID >= l.nextID {
			l.nextID = a.ID + 1
		}
	}
	return l, nil
}

// EnsureSnapshot writes the snapshot file if it does not exist yet, so
// permission problems surface at startup rather than on the first press.
func (l *Log) EnsureSnapshot() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := os.Stat(l.file.Path()); err == nil {
		return nil
	}
	if l.alerts == nil {
		return l.file.Save([]Alert{})
	}
	return l.file.Save(l.alerts)
}

// Count returns the number of retained alerts.
func (l *Log) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.alerts)
}

// Append records a new alert. Empty labels fall back to placeholders;
// all text fields are stripped of markup before storage.
func (l *Log) Append(in Incoming) (Alert, error) {
	driver := l.sanitize(normalize.Label(in.Driver))
	if driver == "" {
		driver = FallbackDriver
	}
	occurrence := l.sanitize(normalize.Label(in.Occurrence))
	if occurrence == "" {
		occurrence = FallbackOccurrence
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	a := Alert{
		ID:         l.nextID,
		CreatedAt:  time.Now().UTC(),
		Driver:     driver,
		Occurrence: occurrence,
		Lat:        in.Lat,
		Lng:        in.Lng,
		Accuracy:   in.Accuracy,
		IP:         in.IP,
		UserAgent:  in.UserAgent,
	}

	prev := l.alerts
	l.alerts = append(l.alerts, a)
	if l.retention > 0 && len(l.alerts) > l.retention {
		l.alerts = l.alerts[len(l.alerts)-l.retention:]
	}
	l.nextID++

	if err := l.file.Save(l.alerts); err != nil {
		l.alerts = prev
		l.nextID--
		l.logger.Error("alert snapshot write failed, rolling back", zap.Error(err))
		return Alert{}, fmt.Errorf("save alerts: %w", err)
	}
	return a, nil
}

// List returns up to limit alerts, newest first. limit <= 0 returns all.
// The returned slice is a copy; callers may hold it across mutations.
func (l *Log) List(limit int) []Alert {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.alerts)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Alert, 0, n)
	for i := len(l.alerts) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.alerts[i])
	}
	return out
}

// Clear empties the feed and returns how many alerts were removed.
// Alert ids keep incrementing afterwards so cleared ids are never reused.
func (l *Log) Clear() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.alerts
	removed := len(prev)
	l.alerts = nil

	if err := l.file.Save([]Alert{}); err != nil {
		l.alerts = prev
		l.logger.Error("alert snapshot write failed, rolling back", zap.Error(err))
		return 0, fmt.Errorf("save alerts: %w", err)
	}
	return removed, nil
}

func (l *Log) sanitize(s string) string {
	return normalize.Label(l.sanitizer.Sanitize(s))
}
