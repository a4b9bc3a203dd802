// Package export renders analysis reports as JSON, XLSX, PDF or a terminal
// summary.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"solar_analyzer/internal/analysis"
)

// Format names an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
	FormatText Format = "text"
)

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("export: unknown format")

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatXLSX, FormatPDF, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q (want json, xlsx, pdf or text)", ErrUnknownFormat, s)
	}
}

// Binary reports whether the format should not be written to a terminal.
func (f Format) Binary() bool {
	return f == FormatXLSX || f == FormatPDF
}

// Render builds the report in the given format.
func Render(r *analysis.Report, f Format) ([]byte, error) {
	if r == nil {
		return nil, errors.New("export: nil report")
	}
	switch f {
	case FormatJSON:
		return BuildJSON(r)
	case FormatXLSX:
		return BuildReportXLSX(r)
	case FormatPDF:
		return BuildReportPDF(r)
	case FormatText:
		var buf bytes.Buffer
		if err := WriteText(&buf, r); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, f)
	}
}

// Write renders the report and writes it to w.
func Write(w io.Writer, r *analysis.Report, f Format) error {
	data, err := Render(r, f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// BuildJSON encodes the report with two-space indentation and a trailing
// newline.
func BuildJSON(r *analysis.Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return append(data, '\n'), nil
}

func sortedMonths[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orNA(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}
