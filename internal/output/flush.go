package output

import "io"

// flushIfPossible pushes buffered output through after each streamed record,
// so a consumer reading ndjson from a pipe sees repositories as they finish.
// Writers without a Flush method are left alone.
func flushIfPossible(w io.Writer) error {
	if f, ok := w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
