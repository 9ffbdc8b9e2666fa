package service

import (
	"context"
	"sync"
	"time"

	"github.com/labelwise/labelwise-api/internal/domain"
)

// CorrectionEntry records one human override of automated labels. Entries
// feed model-quality analysis; they are append-only and never mutate tasks.
type CorrectionEntry struct {
	TaskID      int64               `json:"task_id"`
	ProjectID   int64               `json:"project_id"`
	AnnotatorID int64               `json:"annotator_id"`
	AutoLabels  *domain.LabelResult `json:"auto_labels"`
	FinalLabels *domain.LabelResult `json:"final_labels"`
	CreatedAt   time.Time           `json:"created_at"`
}

// CorrectionLog defines the interface for recording label corrections.
type CorrectionLog interface {
	// Record appends a correction entry.
	Record(ctx context.Context, entry CorrectionEntry) error

	// ListByProject returns the recorded corrections for a project,
	// oldest first.
	ListByProject(ctx context.Context, projectID int64) ([]CorrectionEntry, error)
}

// InMemoryCorrectionLog keeps correction entries in process memory. Adequate
// while correction analysis is an operator task; a durable implementation can
// replace it behind the same interface.
type InMemoryCorrectionLog struct {
	mu      sync.RWMutex
	entries []CorrectionEntry
}

// Ensure InMemoryCorrectionLog implements CorrectionLog
var _ CorrectionLog = (*InMemoryCorrectionLog)(nil)

// NewInMemoryCorrectionLog creates an empty correction log.
func NewInMemoryCorrectionLog() *InMemoryCorrectionLog {
	return &InMemoryCorrectionLog{}
}

// Record appends a correction entry.
func (l *InMemoryCorrectionLog) Record(_ context.Context, entry CorrectionEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// ListByProject returns the recorded corrections for a project, oldest first.
func (l *InMemoryCorrectionLog) ListByProject(_ context.Context, projectID int64) ([]CorrectionEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]CorrectionEntry, 0)
	for _, e := range l.entries {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}
