package domain

import (
	"errors"
	"time"
)

// TaskType identifies the labeling strategy a project's tasks require.
// Dispatch over task types happens through the labeling registry, never
// through string comparison scattered across components.
type TaskType string

// Supported task types.
const (
	TaskTypeNER TaskType = "ner"
)

// Common validation errors for Project
var (
	ErrEmptyProjectName = errors.New("project name cannot be empty")
)

// Project groups tasks that share a labeling configuration: the task type,
// the text language, and the entity class set annotators work with.
type Project struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	TaskType      TaskType  `json:"task_type"`
	Language      string    `json:"language"`
	EntityClasses []string  `json:"entity_classes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewProject creates a new Project with the given configuration.
// Language defaults to "en" when empty. Returns an error if validation fails.
func NewProject(name, description string, taskType TaskType, language string, entityClasses []string) (*Project, error) {
	if language == "" {
		language = "en"
	}

	project := &Project{
		Name:          name,
		Description:   description,
		TaskType:      taskType,
		Language:      language,
		EntityClasses: entityClasses,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	return project, nil
}

// Validate checks if the Project has valid data.
func (p *Project) Validate() error {
	if p.Name == "" {
		return ErrEmptyProjectName
	}

	if !IsValidTaskType(p.TaskType) {
		return ErrInvalidTaskType
	}

	if p.Language == "" {
		return ErrEmptyContent
	}

	return nil
}

// IsValidTaskType checks if the given task type is supported.
func IsValidTaskType(taskType TaskType) bool {
	switch taskType {
	case TaskTypeNER:
		return true
	default:
		return false
	}
}
