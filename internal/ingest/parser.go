package ingest

import (
	"fmt"
	"io"

	"solar_analyzer/internal/model"
)

// Parser reads hourly telemetry from a source and returns records.
type Parser interface {
	Parse(r io.Reader) ([]model.HourlyRecord, error)
}

// ParseError reports a structural failure at a given CSV line. Line 1 is the
// header.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
