package workspace

import (
	"fmt"
	"strings"
)

// Kind tags a repository with the dependency ecosystem it declares.
// It is assigned once, when the workspace is configured, and verifiers are
// selected by switching on it.
type Kind string

const (
	KindPython  Kind = "python"
	KindNode    Kind = "node"
	KindUnknown Kind = "unknown"
)

// Name suffixes used to infer a Kind when the configuration does not set one.
var (
	pythonSuffixes = []string{"_py"}
	nodeSuffixes   = []string{"_js", "_cjs"}
)

// KindFromName infers the repository kind from its directory name.
func KindFromName(name string) Kind {
	for _, s := range pythonSuffixes {
		if strings.HasSuffix(name, s) {
			return KindPython
		}
	}
	for _, s := range nodeSuffixes {
		if strings.HasSuffix(name, s) {
			return KindNode
		}
	}
	return KindUnknown
}

// ParseKind normalizes a user-provided kind. An empty value is returned as "".
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return "", nil
	case "python", "py":
		return KindPython, nil
	case "node", "js", "npm":
		return KindNode, nil
	case "unknown":
		return KindUnknown, nil
	default:
		return "", fmt.Errorf("unsupported repository kind %q (must be one of: python, node, unknown)", raw)
	}
}

func (k Kind) String() string {
	if k == "" {
		return string(KindUnknown)
	}
	return string(k)
}
