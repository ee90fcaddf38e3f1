package tool

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// ArgMode selects how argument fixture content becomes command-line
// arguments.
type ArgMode string

const (
	// ArgModeShell splits the content into words the way a POSIX shell
	// would, honouring quotes and backslash escapes.
	ArgModeShell ArgMode = "shell"

	// ArgModeSingle passes the trimmed content as one argument.
	ArgModeSingle ArgMode = "single"
)

// ValidArgModes lists the accepted --args-mode values.
var ValidArgModes = []ArgMode{ArgModeShell, ArgModeSingle}

// ParseArgMode validates a flag value.
func ParseArgMode(s string) (ArgMode, error) {
	for _, m := range ValidArgModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid args mode %q: must be one of %v", s, ValidArgModes)
}

// ParseArgs trims surrounding whitespace from content and converts it to
// arguments. Blank content yields no arguments.
func ParseArgs(content string, mode ArgMode) ([]string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, nil
	}

	switch mode {
	case ArgModeSingle:
		return []string{trimmed}, nil
	case ArgModeShell, "":
		args, err := shlex.Split(trimmed)
		if err != nil {
			return nil, fmt.Errorf("split arguments %q: %w", trimmed, err)
		}
		return args, nil
	default:
		return nil, fmt.Errorf("invalid args mode %q", mode)
	}
}
