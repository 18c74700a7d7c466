// Package mock contains trivial test doubles shared by the package tests. Nothing in
// here is safe for concurrent use and nothing in here should ever be imported by
// production code.
package mock

import "strings"

// IOWriter is an accumulating io.Writer handed to log.SetOut() so tests can make
// assertions about logging output.
type IOWriter struct {
	line []byte
}

func (t *IOWriter) Reset() {
	t.line = make([]byte, 0)
}

func (t *IOWriter) Write(b []byte) (int, error) {
	t.line = append(t.line, b...)

	return len(b), nil
}

func (t *IOWriter) String() string {
	return string(t.line)
}

func (t *IOWriter) Len() int {
	return len(t.line)
}

// Lines returns the accumulated output split into lines with the trailing newline
// removed. A trailing empty line is discarded so a conventional final newline does not
// produce a phantom entry.
func (t *IOWriter) Lines() []string {
	lines := strings.Split(string(t.line), "\n")
	if len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}

	return lines
}

// Contains returns true if any accumulated line contains the substring.
func (t *IOWriter) Contains(sub string) bool {
	return strings.Contains(string(t.line), sub)
}
