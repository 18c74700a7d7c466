package compiler

import (
	"fmt"
	"strings"
)

// Kind classifies compilation failures. The distinction matters less to callers, who
// abort the run regardless, than to humans reading the message and to tests.
type Kind int

const (
	SyntaxError     Kind = iota + 1 // A line the zone grammar rejects, or a malformed directive
	FormatError                     // Address or prefix text which does not parse
	ConfigError                     // A directive argument with a valid shape but a bad value
	StructuralError                 // The assembled zone text fails the zone-level parse
)

func (t Kind) String() string {
	switch t {
	case SyntaxError:
		return "syntax error"
	case FormatError:
		return "address format error"
	case ConfigError:
		return "config error"
	case StructuralError:
		return "zone structure error"
	}

	return "error"
}

// Error is the only error type Compile returns. It carries the offending file name,
// the 1-based line number within that file and the offending line text, where known. A
// zero Line means the error has no single-line context, as with a whole-zone parse
// failure.
type Error struct {
	Kind Kind
	File string
	Line int
	Text string
	Err  error
}

func (t *Error) Error() string {
	var b strings.Builder
	if len(t.File) > 0 {
		b.WriteString(t.File)
		if t.Line > 0 {
			fmt.Fprintf(&b, ":%d", t.Line)
		}
		b.WriteString(": ")
	}
	b.WriteString(t.Kind.String())
	if t.Err != nil {
		b.WriteString(": ")
		b.WriteString(t.Err.Error())
	}
	if len(t.Text) > 0 {
		fmt.Fprintf(&b, " ('%s')", t.Text)
	}

	return b.String()
}

func (t *Error) Unwrap() error {
	return t.Err
}
