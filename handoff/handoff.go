// Package handoff implements the two-process agreement which decides whether a staged
// set of zone files may be installed. A producer compiles and stages everything, then
// waits on a named pipe in the target directory for a confirmation token; a consumer,
// invoked later by whatever finalized the triggering transaction, writes that token
// into the pipe. A complete line matching the token commits the staged files. Anything
// else, including silence, aborts them.
//
// The pipe does double duty. Its presence gives two otherwise unrelated processes a
// rendezvous point, and an exclusive advisory lock on it serializes producers so that
// overlapping transactions queue rather than race.
package handoff

import (
	"fmt"
	"time"
)

// Both sides of the handshake must agree on the pipe name, so changing it from the
// default is only useful when multiple deployments share one target directory.
const (
	DefaultPipeName = ".zc.fifo"
	DefaultTimeout  = 10 * time.Minute
)

// State tracks a producer transaction through the handshake. Transitions only ever
// move forward: Idle to Staged to AwaitingConfirmation and then exactly one of
// Committed or Aborted.
type State int

const (
	Idle State = iota
	Staged
	AwaitingConfirmation
	Committed
	Aborted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Staged:
		return "Staged"
	case AwaitingConfirmation:
		return "AwaitingConfirmation"
	case Committed:
		return "Committed"
	case Aborted:
		return "Aborted"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// Committer is the two-phase install surface the producer drives once the handshake
// resolves. deploy.Coordinator satisfies it.
type Committer interface {
	Finish() error
	Abort()
}

// ProtocolError reports a breakdown of the handshake machinery itself, such as the
// pipe path being occupied by something which is not a pipe, as distinct from an
// ordinary timeout or I/O failure.
type ProtocolError struct {
	msg string
}

func (t *ProtocolError) Error() string {
	return t.msg
}

func protocolErrf(format string, a ...any) error {
	return &ProtocolError{msg: fmt.Sprintf(format, a...)}
}
