package health

import (
	"time"

	"signaldigest/internal/models"
)

// Status is the derived health of a source
type Status string

const (
	StatusHealthy Status = "healthy"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusStale   Status = "stale"
)

// Thresholds control the classification boundaries. The error/warning
// counts are checked before staleness, so ordering of the rules matters.
type Thresholds struct {
	ErrorCount   int           // consecutive errors at or above this are StatusError
	WarningCount int           // consecutive errors at or above this are StatusWarning
	StaleAfter   time.Duration // time since last successful fetch before StatusStale
}

// DefaultThresholds matches the backend's own health endpoint
func DefaultThresholds() Thresholds {
	return Thresholds{
		ErrorCount:   3,
		WarningCount: 1,
		StaleAfter:   48 * time.Hour,
	}
}

// Classifier derives a Status from a source's fetch metadata. It holds no
// state beyond its thresholds and is safe to call from any goroutine.
type Classifier struct {
	thresholds Thresholds
}

// New creates a classifier with the given thresholds
func New(t Thresholds) *Classifier {
	return &Classifier{thresholds: t}
}

// Classify maps a source's error count and last fetch time to a Status.
// A source that has never fetched successfully is stale, not healthy,
// regardless of its error count being zero.
func (c *Classifier) Classify(source *models.Source) Status {
	return c.ClassifyAt(source, time.Now())
}

// ClassifyAt is Classify evaluated against an explicit reference time
func (c *Classifier) ClassifyAt(source *models.Source, now time.Time) Status {
	if source.ErrorCount >= c.thresholds.ErrorCount {
		return StatusError
	}
	if source.ErrorCount >= c.thresholds.WarningCount {
		return StatusWarning
	}
	if source.LastFetchedAt == nil {
		return StatusStale
	}
	if now.Sub(*source.LastFetchedAt) > c.thresholds.StaleAfter {
		return StatusStale
	}
	return StatusHealthy
}
