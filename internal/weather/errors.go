package weather

import (
	"errors"
	"fmt"
)

// Search errors.
var (
	ErrLocationNotFound   = errors.New("location not found")
	ErrNetwork            = errors.New("weather provider unavailable")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrEmptyQuery         = errors.New("empty location query")
)

// DataShapeError reports a forecast payload that violates the parallel-array
// invariants. Normalization stops at the first violation.
type DataShapeError struct {
	Field  string
	Reason string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("malformed forecast payload: %s: %s", e.Field, e.Reason)
}

func shapeErrorf(field, format string, args ...any) *DataShapeError {
	return &DataShapeError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
