package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks caller mistakes: bad enum values, illegal state
	// transitions, duplicate template keys.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups for identifiers that do not exist.
	ErrNotFound = errors.New("not found")
	// ErrPrecondition marks operations invoked before their required state
	// was reached, such as building an archive for an unfinished project.
	ErrPrecondition = errors.New("precondition not met")
	// ErrConflict marks uniqueness violations: a second project for an
	// asset, a second archive for a project.
	ErrConflict = errors.New("conflict")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above. Passing a nil marker leaves the
// underlying error unclassified so persistence failures propagate unchanged.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		if err == nil {
			return errors.New(detail)
		}
		return fmt.Errorf("%s: %w", detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short classification string for CLI and log reporting.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPrecondition):
		return "precondition"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

// IsRecoverable reports whether an error signals a caller logic problem
// rather than an underlying persistence failure. Recoverable errors are
// never retried internally.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrPrecondition) ||
		errors.Is(err, ErrConflict)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
