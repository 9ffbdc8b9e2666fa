package labeling

import (
	"context"

	"github.com/labelwise/labelwise-api/internal/domain"
)

// Request carries everything a labeler needs to annotate one piece of text.
type Request struct {
	// Text is the content to annotate.
	Text string

	// TaskType selects the annotation scheme (currently only domain.TaskTypeNER).
	TaskType domain.TaskType

	// Language is an ISO 639-1 code hinting the text's language.
	Language string

	// EntityClasses restricts the labeler to these classes. Empty means the
	// labeler's default class set.
	EntityClasses []string

	// Metadata carries free-form hints attached to the task at upload time,
	// such as the source document or domain. Labelers may use or ignore them.
	Metadata map[string]any
}

// Labeler defines the interface for annotating text with an external model.
// This interface is the boundary between the pipeline and AI/LLM services,
// following the hexagonal architecture pattern.
type Labeler interface {
	// Label annotates the given text and returns the extracted entities.
	// It returns an error if labeling fails for any reason (see errors.go
	// for specific types).
	Label(ctx context.Context, req Request) (*domain.LabelResult, error)
}

// Registry maps task types to the labeler that handles them. The zero value
// is not usable; construct with NewRegistry.
type Registry struct {
	labelers map[domain.TaskType]Labeler
}

// NewRegistry creates a registry with no labelers registered.
func NewRegistry() *Registry {
	return &Registry{labelers: make(map[domain.TaskType]Labeler)}
}

// Register associates a labeler with a task type, replacing any previous one.
func (r *Registry) Register(taskType domain.TaskType, l Labeler) {
	r.labelers[taskType] = l
}

// For returns the labeler registered for the task type, or
// ErrUnsupportedTaskType if none is.
func (r *Registry) For(taskType domain.TaskType) (Labeler, error) {
	l, ok := r.labelers[taskType]
	if !ok {
		return nil, ErrUnsupportedTaskType
	}
	return l, nil
}
