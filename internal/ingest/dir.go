package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"solar_analyzer/internal/model"
)

// DefaultGlob matches the monthly hourly exports.
const DefaultGlob = "solar_hourly_*.csv"

// ErrNoFiles is returned when a directory holds no matching exports.
var ErrNoFiles = errors.New("ingest: no hourly CSV files found")

// File is one parsed export.
type File struct {
	Name    string
	Records []model.HourlyRecord
}

// LoadDir parses every file in dir matching glob, in file-name order.
func LoadDir(dir, glob string) ([]File, error) {
	if glob == "" {
		glob = DefaultGlob
	}
	paths, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return nil, fmt.Errorf("matching %q: %w", glob, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoFiles, glob, dir)
	}
	sort.Strings(paths)

	parser := &HourlyCSVParser{}
	files := make([]File, 0, len(paths))
	for _, path := range paths {
		records, err := parseFile(parser, path)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: filepath.Base(path), Records: records})
	}
	return files, nil
}

func parseFile(p Parser, path string) ([]model.HourlyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return records, nil
}
