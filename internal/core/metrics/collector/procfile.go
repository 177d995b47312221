// Package collector reads kernel pseudo-files and turns their whitespace
// separated rows into typed records.
package collector

import (
	"bufio"
	"fmt"
	"io/fs"
	"strconv"

	"horizonx-sampler/internal/domain"
)

const maxLineSize = 1 << 20

// Source is one pseudo-file contract: where it lives relative to the proc
// root and how its lines become T.
type Source[T any] interface {
	Name() string
	Path() string
	Parse(lines []string) (T, error)
}

// LineLimiter is implemented by sources that only need the leading lines
// of their file.
type LineLimiter interface {
	LineLimit() int
}

// Read opens src under fsys and parses it. Failures come back as
// *domain.SourceError wrapping ErrUnreadable or ErrMalformedSource.
func Read[T any](fsys fs.FS, src Source[T]) (T, error) {
	var zero T

	lines, err := readLines(fsys, src)
	if err != nil {
		return zero, &domain.SourceError{
			Source: src.Name(),
			Path:   src.Path(),
			Err:    fmt.Errorf("%w: %w", domain.ErrUnreadable, err),
		}
	}

	record, err := src.Parse(lines)
	if err != nil {
		return zero, &domain.SourceError{Source: src.Name(), Path: src.Path(), Err: err}
	}

	return record, nil
}

func readLines[T any](fsys fs.FS, src Source[T]) ([]string, error) {
	f, err := fsys.Open(src.Path())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	limit := 0
	if l, ok := src.(LineLimiter); ok {
		limit = l.LineLimit()
	}

	var lines []string

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if limit > 0 && len(lines) >= limit {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// ParseUint returns fields[idx] as a base-10 uint64. An index out of range
// or a token that is not a non-negative integer yields 0, never an error.
func ParseUint(fields []string, idx int) uint64 {
	if idx < 0 || idx >= len(fields) {
		return 0
	}

	v, err := strconv.ParseUint(fields[idx], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
