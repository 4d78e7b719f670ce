package domain

import dErrors "lekha/pkg/domain-errors"

// TaskPriority orders obligations for associates working a queue.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

var validPriorities = map[TaskPriority]bool{
	PriorityLow:      true,
	PriorityMedium:   true,
	PriorityHigh:     true,
	PriorityCritical: true,
}

// ParseTaskPriority constructs a TaskPriority from external input.
func ParseTaskPriority(s string) (TaskPriority, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "priority cannot be empty")
	}
	p := TaskPriority(s)
	if !validPriorities[p] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported priority %q", s)
	}
	return p, nil
}

func (p TaskPriority) IsValid() bool {
	return validPriorities[p]
}

func (p TaskPriority) String() string {
	return string(p)
}
