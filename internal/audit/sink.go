package audit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Sink persists audit records. Implementations must be safe for concurrent use.
type Sink interface {
	Append(ctx context.Context, rec Record) error
}

// FileSink appends records to a text file. The file is opened in append mode
// for every record and is never truncated or rewritten.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFileSink returns a sink writing to path. The file is created on first use.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path returns the log file location.
func (s *FileSink) Path() string {
	return s.path
}

// Append writes rec as one block with a single write call.
func (s *FileSink) Append(_ context.Context, rec Record) error {
	var buf bytes.Buffer
	if err := Encode(&buf, rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("write audit log: %w", err)
	}
	return f.Close()
}

// MultiSink fans a record out to every sink, even when some of them fail.
type MultiSink []Sink

// Append returns the joined errors of the failing sinks.
func (m MultiSink) Append(ctx context.Context, rec Record) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Append(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
