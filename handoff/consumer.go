package handoff

import (
	"os"
	"path/filepath"
)

// Confirm is the consumer side of the handshake: write the transaction token into the
// producer's pipe and return without waiting for any acknowledgement. An error means
// the token could not be delivered, most commonly because no producer currently has
// the pipe open for reading.
func Confirm(dir, pipeName, token string) error {
	path := filepath.Join(dir, pipeName)
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeNamedPipe == 0 {
		return protocolErrf("handoff path '%s' exists but is not a named pipe", path)
	}

	f, err := openPipeWriter(path)
	if err != nil {
		return err
	}
	_, err = f.WriteString(token + "\n")
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	return err
}
