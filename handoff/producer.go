package handoff

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/zctools/zc/log"
)

// Producer is the compiling side of the handshake. Typical use:
//
//	p := handoff.NewProducer(dir, token)
//	err := p.Open()       // Rendezvous and lock. Blocks behind earlier producers.
//	...stage zones...
//	p.Staged(coordinator) // Commit authority transfers to the handshake
//	err = p.Wait()        // nil means installed, anything else means removed
//	p.Close()
//
// A Producer drives exactly one transaction and its methods must all be called from
// the one goroutine, with the sole exception of Interrupt.
type Producer struct {
	PipeName    string        // Pipe name within dir. Default DefaultPipeName.
	Timeout     time.Duration // Upper bound on Wait. Default DefaultTimeout.
	PostCommand string        // Optional shell command run after a successful commit

	dir       string
	token     string
	state     State
	pipe      *os.File
	committer Committer
}

func NewProducer(dir, token string) *Producer {
	return &Producer{
		PipeName: DefaultPipeName,
		Timeout:  DefaultTimeout,
		dir:      dir,
		token:    token,
	}
}

// State returns the transaction's current position in the handshake.
func (t *Producer) State() State {
	return t.state
}

// Open rendezvouses with future consumers. It creates the named pipe if absent, opens
// it and takes the exclusive advisory lock, blocking behind any earlier producer still
// mid-transaction. The opened path is verified to actually be a pipe since it could
// have been removed and replaced by something else in between; a mismatch earns a
// ProtocolError. The lock is held until Close and is never released early.
func (t *Producer) Open() error {
	if t.state != Idle || t.pipe != nil {
		panic("handoff: Producer.Open called in state " + t.state.String())
	}

	path := filepath.Join(t.dir, t.PipeName)
	err := makePipe(path)
	if err != nil {
		return err
	}
	f, err := openPipe(path)
	if err != nil {
		return err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	if fi.Mode()&os.ModeNamedPipe == 0 {
		f.Close()
		return protocolErrf("handoff path '%s' exists but is not a named pipe", path)
	}

	log.Detailf("waiting for the transaction lock on %s", path)
	err = lockPipe(f)
	if err != nil {
		f.Close()
		return err
	}
	t.pipe = f

	return nil
}

// Staged records that every zone is durably staged and hands commit authority to the
// handshake. From here on the committer is only ever invoked by Wait: Finish on a
// confirmed token, Abort on everything else.
func (t *Producer) Staged(c Committer) {
	if t.pipe == nil {
		panic("handoff: Producer.Staged called before Open")
	}
	if t.state != Idle || c == nil {
		panic("handoff: Producer.Staged called in state " + t.state.String())
	}
	t.committer = c
	t.state = Staged
}

// Wait blocks until the consumer writes the transaction token or the time budget runs
// out, then resolves the transaction. A nil return means the staged files were
// installed; any error means they were removed and the transaction failed. The token
// must arrive as a complete newline-terminated line matching exactly; fragments and
// foreign lines never commit.
func (t *Producer) Wait() error {
	if t.state != Staged {
		panic("handoff: Producer.Wait called in state " + t.state.String())
	}
	t.state = AwaitingConfirmation

	log.Infof("waiting up to %s for confirmation of transaction '%s'",
		t.Timeout, t.token)
	err := t.await()
	if err == nil {
		err = t.committer.Finish()
	}
	if err != nil {
		t.state = Aborted
		t.committer.Abort()
		return err
	}
	t.state = Committed
	log.Infof("transaction '%s' committed", t.token)
	t.postCommit()

	return nil
}

// await runs the bounded read loop. The deadline covers the whole wait, not each
// read, so a chatty consumer cannot stretch the budget.
func (t *Producer) await() error {
	err := t.pipe.SetReadDeadline(time.Now().Add(t.Timeout))
	if err != nil {
		return err
	}

	var buf []byte
	scanned := 0 // buf[:scanned] holds the lines already inspected
	chunk := make([]byte, 512)
	for {
		n, err := t.pipe.Read(chunk)
		buf = append(buf, chunk[:n]...)
		for {
			nl := bytes.IndexByte(buf[scanned:], '\n')
			if nl == -1 {
				break
			}
			line := string(buf[scanned : scanned+nl])
			scanned += nl + 1
			if line == t.token {
				return nil
			}
			log.Debugf("ignoring foreign line '%s' on the handshake pipe", line)
		}
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return fmt.Errorf("no confirmation of '%s' within %s",
					t.token, t.Timeout)
			}
			return err
		}
	}
}

// postCommit runs the optional post-commit command under the shell, logging its
// combined output line by line. The transaction is already committed, so a failure
// here is reported but changes nothing.
func (t *Producer) postCommit() {
	if len(t.PostCommand) == 0 {
		return
	}

	log.Infof("running post-commit command: %s", t.PostCommand)
	out, err := exec.Command("/bin/sh", "-c", t.PostCommand).CombinedOutput()
	for _, l := range strings.Split(string(out), "\n") {
		if len(l) > 0 {
			log.Infof("post-commit: %s", l)
		}
	}
	if err != nil {
		log.Warningf("post-commit command failed: %s", err)
	}
}

// Interrupt wakes a blocked Wait by yanking the pipe out from under it, failing the
// transaction. It is the one method safe to call from another goroutine, typically a
// signal handler. Interrupt before Open is a harmless no-op.
func (t *Producer) Interrupt() {
	if t.pipe != nil {
		t.pipe.Close()
	}
}

// Close releases the pipe descriptor and with it the advisory lock, letting the next
// producer in. The pipe itself stays behind in the target directory for reuse.
func (t *Producer) Close() error {
	if t.pipe == nil {
		return nil
	}
	err := t.pipe.Close()
	t.pipe = nil
	if errors.Is(err, os.ErrClosed) { // Interrupt got there first
		err = nil
	}

	return err
}
