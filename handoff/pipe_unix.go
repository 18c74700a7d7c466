//go:build !windows
// +build !windows

package handoff

import (
	"os"
	"syscall"
)

// makePipe creates the named pipe if it does not already exist. The mode lets anyone
// write a confirmation but only the owner read one. A pre-existing path of any type is
// accepted here; the caller verifies the type after opening, which closes the gap
// between this check and the open.
func makePipe(path string) error {
	err := syscall.Mkfifo(path, 0622)
	if err == syscall.EEXIST {
		return nil
	}
	if err != nil {
		return os.NewSyscallError("mkfifo "+path, err)
	}

	return nil
}

// openPipe opens the pipe for the producer. Opening read/write rather than read-only
// means this process always counts as a writer, so reads block (or time out) instead
// of returning end of file the instant no consumer has the pipe open, which on a
// freshly created pipe is immediately. The non-blocking flag hands the descriptor to
// the runtime poller, which is what makes SetReadDeadline work on it.
func openPipe(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR|syscall.O_NONBLOCK, 0)
}

// openPipeWriter opens the pipe for a consumer without blocking for a reader. When no
// producer holds the read side the open fails immediately with ENXIO rather than
// hanging forever waiting for one.
func openPipeWriter(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|syscall.O_NONBLOCK, 0)
}

// lockPipe takes the exclusive advisory lock which serializes producers, blocking
// until any earlier holder exits. The descriptor is locked, not the path, so the lock
// lives exactly as long as the open file and the operating system releases it even
// when the holder dies badly.
func lockPipe(f *os.File) error {
	rc, err := f.SyscallConn()
	if err != nil {
		return err
	}
	var flockErr error
	err = rc.Control(func(fd uintptr) {
		flockErr = syscall.Flock(int(fd), syscall.LOCK_EX)
	})
	if err != nil {
		return err
	}

	return os.NewSyscallError("flock", flockErr)
}
