package handoff

import (
	"os"
)

// Windows has no POSIX named pipes so the handshake cannot run there. Compilation and
// direct installs still work; only the producer/consumer pair is refused.

func makePipe(path string) error {
	return protocolErrf("named pipe handoff is not supported on windows")
}

func openPipe(path string) (*os.File, error) {
	return nil, protocolErrf("named pipe handoff is not supported on windows")
}

func openPipeWriter(path string) (*os.File, error) {
	return nil, protocolErrf("named pipe handoff is not supported on windows")
}

func lockPipe(f *os.File) error {
	return protocolErrf("named pipe handoff is not supported on windows")
}
