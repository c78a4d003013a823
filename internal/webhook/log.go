// Package webhook keeps an in-memory log of received pre-assessment
// webhooks for inspection and debugging.
package webhook

import (
	"sync"
	"time"
)

// Received is one logged pre-assessment webhook.
type Received struct {
	Timestamp       string `json:"timestamp"`
	OrganizationID  string `json:"organization_id"`
	PreassessmentID string `json:"preassessment_id"`
	RegulationID    string `json:"regulation_id"`
}

// Log is a mutex-guarded in-memory webhook log. Contents do not survive
// a restart.
type Log struct {
	mu       sync.Mutex
	received []Received
	now      func() time.Time
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Record appends one received webhook and returns the stored entry,
// timestamp included.
func (l *Log) Record(organizationID, preassessmentID, regulationID string) Received {
	entry := Received{
		Timestamp:       l.now().UTC().Format(time.RFC3339),
		OrganizationID:  organizationID,
		PreassessmentID: preassessmentID,
		RegulationID:    regulationID,
	}
	l.mu.Lock()
	l.received = append(l.received, entry)
	l.mu.Unlock()
	return entry
}

// All returns a snapshot of the logged webhooks in arrival order.
func (l *Log) All() []Received {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Received, len(l.received))
	copy(out, l.received)
	return out
}

// Clear empties the log and returns how many entries were removed.
func (l *Log) Clear() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := len(l.received)
	l.received = nil
	return count
}
