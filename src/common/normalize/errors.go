package normalize

import (
	"errors"
	"fmt"
)

// ErrInputShape is matched by every InputShapeError.
var ErrInputShape = errors.New("unexpected document shape")

// InputShapeError reports a structural problem in the source document that
// aborts the whole normalization run.
type InputShapeError struct {
	Path   string
	Reason string
}

func (e *InputShapeError) Error() string {
	return fmt.Sprintf("%s at %s: %s", ErrInputShape, e.Path, e.Reason)
}

func (e *InputShapeError) Unwrap() error {
	return ErrInputShape
}
