package stats

import (
	"context"
	"encoding/json"
	"os"

	"github.com/depscope/depscope/pkg/errors"
)

// FileSink appends one JSON document per scan to a local file, newline
// delimited.
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to path. The file is created on the
// first record.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Record(_ context.Context, st ScanStats) error {
	data, err := json.Marshal(st)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding scan stats")
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "opening stats file %s", s.path)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing stats file %s", s.path)
	}
	return nil
}

func (s *FileSink) Close(context.Context) error { return nil }
