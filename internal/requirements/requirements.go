// Package requirements reads pip-style requirements files down to bare
// importable module names.
package requirements

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// PinDelimiter separates a package name from its pinned version.
const PinDelimiter = "=="

// Parse returns the module names declared in r, in file order.
//
// Each line is trimmed and cut at the first PinDelimiter; the left side is the
// name. Blank lines and '#' comments are ignored, repeated names are kept once.
func Parse(r io.Reader) ([]string, error) {
	var names []string
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, _, _ := strings.Cut(line, PinDelimiter)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// ReadFile parses the requirements file at path.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return names, nil
}
