package log

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Level is the verbosity of the logger. The zero value is Silent.
type Level int

const (
	SilentLevel Level = iota
	InfoLevel
	DetailLevel
	DebugLevel
)

const (
	infoPrefix    = ""
	detailPrefix  = "  "
	debugPrefix   = "   Dbg:"
	warningPrefix = "Warning: "
)

var (
	out   io.Writer = os.Stdout
	level           = InfoLevel
)

func (l Level) String() string {
	switch l {
	case InfoLevel:
		return "Info"
	case DetailLevel:
		return "Detail"
	case DebugLevel:
		return "Debug"
	}

	return "Silent"
}

// SetOut redirects all logging to the supplied io.Writer. The default is os.Stdout. The
// supplied io.Writer must never be nil.
func SetOut(w io.Writer) {
	if w == nil {
		panic("log.SetOut() called with a nil io.Writer")
	}
	out = w
}

// Out returns the current io.Writer for callers which produce output that is not
// controlled by log levels, such as usage and fatal error reporting.
func Out() io.Writer {
	return out
}

// SetLevel sets the current logging level.
func SetLevel(l Level) {
	level = l
}

// CurrentLevel returns the current logging level.
func CurrentLevel() Level {
	return level
}

// Infof provides an approximate fmt.Printf equivalent for Info-level logging. A newline
// is always appended so the caller should not supply one. If the formatted string
// contains embedded newlines every resulting line is prefixed separately.
func Infof(format string, a ...any) {
	if level >= InfoLevel {
		emit(infoPrefix, fmt.Sprintf(format, a...))
	}
}

// Info provides a fmt.Print like equivalent for Info-level logging.
func Info(a ...any) {
	if level >= InfoLevel {
		emit(infoPrefix, fmt.Sprint(a...))
	}
}

// Detailf provides a fmt.Printf equivalent for Detail-level logging.
func Detailf(format string, a ...any) {
	if level >= DetailLevel {
		emit(detailPrefix, fmt.Sprintf(format, a...))
	}
}

// Detail provides a fmt.Print like equivalent for Detail-level logging.
func Detail(a ...any) {
	if level >= DetailLevel {
		emit(detailPrefix, fmt.Sprint(a...))
	}
}

// Debugf provides a fmt.Printf equivalent for Debug-level logging.
func Debugf(format string, a ...any) {
	if level >= DebugLevel {
		emit(debugPrefix, fmt.Sprintf(format, a...))
	}
}

// Debug provides a fmt.Print like equivalent for Debug-level logging.
func Debug(a ...any) {
	if level >= DebugLevel {
		emit(debugPrefix, fmt.Sprint(a...))
	}
}

// Warningf reports a non-fatal condition. Warnings are written at every level except
// Silent and carry a fixed "Warning: " prefix so they stand out from Info output.
func Warningf(format string, a ...any) {
	if level > SilentLevel {
		emit(warningPrefix, fmt.Sprintf(format, a...))
	}
}

// emit writes s to the output stream with the prefix prepended to every line. Trailing
// empty lines are chomped so callers can be sloppy about final newlines.
func emit(prefix, s string) {
	lines := strings.Split(s, "\n")
	for len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	for _, l := range lines {
		fmt.Fprint(out, prefix, l, "\n")
	}
}
