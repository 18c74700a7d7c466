package addr

import "fmt"

// FormatError reports text which does not parse as an address or prefix of the
// expected family. Callers which care use errors.As; everyone else just prints it.
type FormatError struct {
	msg string
}

func (t *FormatError) Error() string {
	return t.msg
}

func formatErrf(format string, a ...any) error {
	return &FormatError{msg: fmt.Sprintf(format, a...)}
}
