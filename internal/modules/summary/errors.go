package summary

import (
	"errors"
	"fmt"
)

// GenericFailureMessage is the only failure text that ever leaves this package.
const GenericFailureMessage = "Failed to generate summary. Please try again."

// ErrNoProvider means no enabled model provider is configured.
var ErrNoProvider = errors.New("no enabled AI provider configured")

// ValidationError reports malformed input; the model is never called.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// FailureKind classifies a GenerationError for logs and metrics.
type FailureKind string

const (
	KindTimeout     FailureKind = "timeout"
	KindRateLimited FailureKind = "rate_limited"
	KindTransport   FailureKind = "transport"
	KindBackend     FailureKind = "backend"
	KindEmpty       FailureKind = "empty"
)

// GenerationError wraps a failure while talking to the model.
type GenerationError struct {
	Kind FailureKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation failed (%s)", e.Kind)
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SchemaMismatchError means the model answered but not with {"summary": string}.
type SchemaMismatchError struct {
	Reason string
	Raw    string
}

func (e *SchemaMismatchError) Error() string {
	return "model output does not match schema: " + e.Reason
}

// errorKind flattens any core error into a metric/log label.
func errorKind(err error) string {
	var validationErr *ValidationError
	var generationErr *GenerationError
	var schemaErr *SchemaMismatchError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &schemaErr):
		return "schema_mismatch"
	case errors.As(err, &generationErr):
		return string(generationErr.Kind)
	default:
		return "unknown"
	}
}
