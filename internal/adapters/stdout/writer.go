// Package stdout prints snapshots to a stream.
package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"horizonx-sampler/internal/domain"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Writer emits one JSON document per line, or YAML documents separated
// by "---".
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	format string
	n      int
}

func NewWriter(w io.Writer, format string) (*Writer, error) {
	switch format {
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return &Writer{w: w, format: format}, nil
}

func (w *Writer) Write(_ context.Context, s domain.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var err error
	switch w.format {
	case FormatYAML:
		if w.n > 0 {
			if _, err = io.WriteString(w.w, "---\n"); err != nil {
				return err
			}
		}
		enc := yaml.NewEncoder(w.w)
		enc.SetIndent(2)
		if err = enc.Encode(s); err == nil {
			err = enc.Close()
		}
	default:
		err = json.NewEncoder(w.w).Encode(s)
	}
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	w.n++
	return nil
}
