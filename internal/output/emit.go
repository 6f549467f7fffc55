package output

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// EmitSink writes a structured copy of the run to stdout next to (or instead
// of, with --no-console) the console output. One sink is added per --emit value.
type EmitSink struct {
	writer io.Writer
	mu     sync.Mutex
	stream *resultStream
}

func NewEmitSink(w io.Writer, format string) (*EmitSink, error) {
	if w == nil {
		return nil, errors.New("emit sink writer must not be nil")
	}
	stream, err := newResultStream(format)
	if err != nil {
		return nil, fmt.Errorf("--emit: %w", err)
	}
	return &EmitSink{writer: w, stream: stream}, nil
}

func (s *EmitSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream.write(s.writer, v)
}

func (s *EmitSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream.finish(s.writer)
}
