package output

import (
	"encoding/json"
	"fmt"
	"io"

	"repoeval/internal/verify"
)

// Structured formats accepted by --emit and --out.
const (
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
)

// resultStream encodes the evaluation stream for the structured sinks.
//
// json collects verify.Result values and writes them as one indented array
// when the run ends, so consumers get the summary in processing order.
// ndjson writes every lifecycle Event as it happens; results are wrapped in a
// repo.result Event.
type resultStream struct {
	format  string
	results []verify.Result
}

func newResultStream(format string) (*resultStream, error) {
	if format != FormatJSON && format != FormatNDJSON {
		return nil, fmt.Errorf("unsupported structured format: %s (must be one of: json, ndjson)", format)
	}
	return &resultStream{format: format}, nil
}

func (s *resultStream) write(w io.Writer, v any) error {
	if s.format == FormatJSON {
		if r, ok := v.(verify.Result); ok {
			s.results = append(s.results, r)
		}
		return nil
	}

	var ev Event
	switch t := v.(type) {
	case Event:
		ev = t
	case verify.Result:
		ev = eventFromResult(t)
	default:
		return nil
	}
	if err := json.NewEncoder(w).Encode(ev); err != nil {
		return err
	}
	return flushIfPossible(w)
}

// finish writes the json array. An empty run is written as [].
func (s *resultStream) finish(w io.Writer) error {
	if s.format != FormatJSON {
		return nil
	}
	results := s.results
	if results == nil {
		results = []verify.Result{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return err
	}
	return flushIfPossible(w)
}
