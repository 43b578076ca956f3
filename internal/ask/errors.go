package ask

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidQuestion  Kind = "invalid_question"
	KindSchemaFetch      Kind = "schema_fetch"
	KindModelUnavailable Kind = "model_unavailable"
)

var ErrBlankQuestion = errors.New("question is required")

// Error is returned by Service for failures that stop the pipeline before a
// query runs. Query execution failures are reported in the result instead.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func KindOf(err error) (Kind, bool) {
	var askErr *Error
	if errors.As(err, &askErr) {
		return askErr.Kind, true
	}
	return "", false
}

func IsKind(err error, kind Kind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}
