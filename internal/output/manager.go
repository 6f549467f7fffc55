package output

import (
	"errors"
	"fmt"
)

// Sink receives the evaluation stream: lifecycle Events and one verify.Result
// per evaluated repository. Close is called once after run.finished.
type Sink interface {
	Write(v any) error
	Close() error
}

// Manager fans the evaluation stream out to every configured sink (console,
// --emit, --out, --report). A failing sink does not keep the others from
// receiving the record.
type Manager struct {
	sinks []Sink
}

func NewManager() *Manager {
	return &Manager{}
}

// AddSink registers s. Sinks receive records in registration order.
func (m *Manager) AddSink(s Sink) error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	if s == nil {
		return errors.New("sink must not be nil")
	}
	m.sinks = append(m.sinks, s)
	return nil
}

func (m *Manager) Write(v any) error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(v); err != nil {
			errs = append(errs, fmt.Errorf("%s sink: %w", sinkName(s), err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink, including ones after a sink that failed to close.
func (m *Manager) Close() error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s sink: %w", sinkName(s), err))
		}
	}
	return errors.Join(errs...)
}

func sinkName(s Sink) string {
	switch t := s.(type) {
	case *ConsoleSink:
		return "console"
	case *EmitSink:
		return "emit"
	case *FileSink:
		return "file " + t.path
	case *ReportSink:
		return "report " + t.path
	default:
		return fmt.Sprintf("%T", s)
	}
}
