package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"repoeval/internal/verify"

	"github.com/fatih/color"
)

const (
	GlyphPass = "✓"
	GlyphFail = "✗"
)

var rule = strings.Repeat("-", 50)

type ConsoleSink struct {
	writer  io.Writer
	format  string // "text", "json", "ndjson"
	mu      sync.Mutex
	results []verify.Result
	pass    *color.Color
	fail    *color.Color

	// stream encodes the json and ndjson formats.
	stream *resultStream
}

// NewConsoleSink creates the human-facing sink. Colors are only applied when
// colorize is set; pass !color.NoColor to follow the terminal.
func NewConsoleSink(w io.Writer, format string, colorize bool) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{
		writer: w,
		format: format,
		pass:   color.New(color.FgGreen),
		fail:   color.New(color.FgRed),
	}
	if format != "text" {
		// An unsupported format leaves stream nil and is reported on Write.
		s.stream, _ = newResultStream(format)
	}
	if colorize {
		s.pass.EnableColor()
		s.fail.EnableColor()
	} else {
		s.pass.DisableColor()
		s.fail.DisableColor()
	}
	return s
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.format == "text":
		if err := s.writeText(v); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	case s.stream != nil:
		return s.stream.write(s.writer, v)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) writeText(v any) error {
	println := func(args ...any) error {
		_, err := fmt.Fprintln(s.writer, args...)
		return err
	}

	switch t := v.(type) {
	case verify.Result:
		s.results = append(s.results, t)
		return println(t.Message)
	case Event:
		switch t.Type {
		case EventRunStarted:
			if err := println("Starting repository evaluation..."); err != nil {
				return err
			}
			return println(rule)
		case EventRepoStarted:
			return println(fmt.Sprintf("\nEvaluating %s...", t.Repo))
		case EventRepoChecked:
			return println(t.Message)
		case EventRunFinished:
			return s.writeSummary()
		}
	}
	return nil
}

// writeSummary prints one glyph line per recorded result, in processing order.
func (s *ConsoleSink) writeSummary() error {
	if _, err := fmt.Fprintf(s.writer, "\nEvaluation Summary:\n%s\n", rule); err != nil {
		return err
	}
	for _, r := range s.results {
		glyph := s.pass.Sprint(GlyphPass)
		if !r.Success {
			glyph = s.fail.Sprint(GlyphFail)
		}
		if _, err := fmt.Fprintf(s.writer, "%s %s\n", glyph, r.Repo); err != nil {
			return err
		}
	}
	return nil
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.format == "text":
		return nil
	case s.stream != nil:
		return s.stream.finish(s.writer)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}
