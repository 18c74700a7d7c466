// Package deploy installs compiled zone files with a two-phase commit. Stage writes
// each zone durably under a temporary name in the target directory, Finish renames
// the lot onto the real names and Abort deletes whatever never got renamed. Rename is
// atomic on a POSIX file system, so a reader of the target directory sees either the
// old file or the new one, never a torn middle, and a run which dies before Finish
// leaves only recognizably named droppings.
package deploy

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/xid"

	"github.com/zctools/zc/log"
)

// stageMarker sits between the final name and the unique suffix of every temporary
// file, so humans and cleanup jobs can tell staged zones from real ones at a glance.
const stageMarker = ".zc-stage."

// stagedFile records one pending temp to final rename.
type stagedFile struct {
	temp  string
	final string
}

// Coordinator owns the staged files of exactly one run. Nothing here is safe for
// concurrent use: a run stages everything, then either finishes or aborts, all in one
// goroutine.
type Coordinator struct {
	dir    string
	staged []stagedFile
}

func NewCoordinator(dir string) *Coordinator {
	return &Coordinator{dir: dir}
}

// Dir returns the target directory files are installed into.
func (t *Coordinator) Dir() string {
	return t.dir
}

// Stage durably writes one zone under a temporary name and records the pending
// rename. The temporary name is the final name plus the stage marker plus an id which
// embeds the machine and process identity, so overlapping runs cannot collide. The
// file content is a generation timestamp comment, a blank line, then the compiled text
// exactly as given.
func (t *Coordinator) Stage(finalName, text string) error {
	final := filepath.Join(t.dir, finalName)
	temp := final + stageMarker + xid.New().String()

	f, err := os.OpenFile(temp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	header := fmt.Sprintf("; Generated by zc at %s\n\n",
		time.Now().Format(time.RFC1123Z))
	if _, err = f.WriteString(header + text); err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(temp) // Best effort; nothing useful to do if this fails too
		return err
	}

	t.staged = append(t.staged, stagedFile{temp: temp, final: final})
	log.Detailf("staged %s", filepath.Base(temp))

	return nil
}

// Finish renames every staged file onto its final name in staging order. The mapping
// empties as renames succeed, so a failure part way through leaves only the unrenamed
// files behind for Abort.
func (t *Coordinator) Finish() error {
	for len(t.staged) > 0 {
		s := t.staged[0]
		if err := os.Rename(s.temp, s.final); err != nil {
			return err
		}
		t.staged = t.staged[1:]
		log.Infof("installed %s", s.final)
	}

	return nil
}

// Abort removes every still-staged temporary file, ignoring removal failures since
// the file may never have survived whatever brought us here. Calling Abort after a
// successful Finish, or twice, does nothing.
func (t *Coordinator) Abort() {
	for _, s := range t.staged {
		os.Remove(s.temp)
		log.Debugf("removed staged %s", s.temp)
	}
	t.staged = nil
}

// Pending returns the number of staged files still awaiting Finish or Abort.
func (t *Coordinator) Pending() int {
	return len(t.staged)
}
