package output

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"repoeval/internal/verify"
)

// ReportSink writes a Markdown report when the run finishes.
type ReportSink struct {
	path     string
	file     *os.File
	mu       sync.Mutex
	runID    string
	results  []verify.Result
	skipped  []Event
	exitCode int
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}
	if err := ensureParentDir(path); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return &ReportSink{path: path, file: f}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case verify.Result:
		s.results = append(s.results, t)
	case Event:
		switch t.Type {
		case EventRunStarted:
			s.runID = t.RunID
		case EventRepoSkipped:
			s.skipped = append(s.skipped, t)
		case EventRunFinished:
			s.exitCode = t.ExitCode
		}
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.file.WriteString(s.render())
	if closeErr := s.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func (s *ReportSink) render() string {
	var b strings.Builder
	passed := 0
	for _, r := range s.results {
		if r.Success {
			passed++
		}
	}

	b.WriteString("# Repository Evaluation Report\n\n")
	if s.runID != "" {
		fmt.Fprintf(&b, "Run: `%s`\n\n", s.runID)
	}
	fmt.Fprintf(&b, "- Evaluated: %d\n", len(s.results))
	fmt.Fprintf(&b, "- Passed: %d\n", passed)
	fmt.Fprintf(&b, "- Failed: %d\n", len(s.results)-passed)
	fmt.Fprintf(&b, "- Skipped: %d\n", len(s.skipped))
	fmt.Fprintf(&b, "- Exit code: %d\n\n", s.exitCode)

	b.WriteString("## Results\n\n")
	if len(s.results) == 0 {
		b.WriteString("_No repositories were evaluated._\n")
	} else {
		b.WriteString("| Status | Repository | Kind | Details |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, r := range s.results {
			glyph := GlyphPass
			if !r.Success {
				glyph = GlyphFail
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", glyph, r.Repo, r.Kind, escapeCell(r.Message))
		}
	}

	if len(s.skipped) > 0 {
		b.WriteString("\n## Skipped\n\n")
		for _, e := range s.skipped {
			fmt.Fprintf(&b, "- %s: %s\n", e.Repo, e.Message)
		}
	}
	return b.String()
}

// escapeCell keeps multi-line installer output inside one table cell.
func escapeCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(s, "\n", "<br>")
}
