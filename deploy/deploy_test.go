package deploy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zctools/zc/log"
	"github.com/zctools/zc/mock"
)

const zoneText = `$ORIGIN example.com.
@ SOA ns1 hostmaster 1 2 3 4 5
@ NS ns1
ns1 A 10.0.0.53
`

// listNames returns the sorted base names currently present in dir.
func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal("ReadDir failed", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}

func TestStageFinish(t *testing.T) {
	out := &mock.IOWriter{}
	log.SetOut(out)
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(log.InfoLevel)

	dir := t.TempDir()
	cdr := NewCoordinator(dir)
	if cdr.Dir() != dir {
		t.Error("Dir() does not round-trip", cdr.Dir(), dir)
	}

	err := cdr.Stage("example.com", zoneText)
	if err != nil {
		t.Fatal("Stage failed", err)
	}
	err = cdr.Stage("0.0.10.in-addr.arpa", "ptr text\n")
	if err != nil {
		t.Fatal("Stage failed", err)
	}
	if cdr.Pending() != 2 {
		t.Error("Expected two pending files, not", cdr.Pending())
	}

	// Nothing should be visible under a final name yet and every temporary
	// name should identify the zone it will become.
	names := listNames(t, dir)
	if len(names) != 2 {
		t.Fatal("Expected two staged files, got", names)
	}
	for _, name := range names {
		if !strings.Contains(name, stageMarker) {
			t.Error("Staged file lacks the stage marker", name)
		}
		if name == "example.com" || name == "0.0.10.in-addr.arpa" {
			t.Error("Final name appeared before Finish", name)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "example.com")); err == nil {
		t.Error("example.com exists before Finish")
	}

	out.Reset()
	err = cdr.Finish()
	if err != nil {
		t.Fatal("Finish failed", err)
	}
	if cdr.Pending() != 0 {
		t.Error("Pending should drain to zero, not", cdr.Pending())
	}

	names = listNames(t, dir)
	if len(names) != 2 {
		t.Fatal("Expected exactly the two final files, got", names)
	}
	for _, name := range names {
		if strings.Contains(name, stageMarker) {
			t.Error("Temporary file survived Finish", name)
		}
	}

	// Installed content is a timestamp comment, a blank line, then the
	// compiled text byte for byte.
	b, err := os.ReadFile(filepath.Join(dir, "example.com"))
	if err != nil {
		t.Fatal("ReadFile failed", err)
	}
	lines := strings.SplitN(string(b), "\n", 3)
	if len(lines) != 3 {
		t.Fatal("Installed file is too short", string(b))
	}
	if !strings.HasPrefix(lines[0], "; Generated by zc at ") {
		t.Error("First line is not the generation comment", lines[0])
	}
	if len(lines[0]) <= len("; Generated by zc at ") {
		t.Error("Generation comment has no timestamp", lines[0])
	}
	if len(lines[1]) != 0 {
		t.Error("Second line should be blank, not", lines[1])
	}
	if lines[2] != zoneText {
		t.Error("Zone text mangled", lines[2])
	}

	// Install order follows staging order.
	got := out.String()
	first := strings.Index(got, "example.com")
	second := strings.Index(got, "0.0.10.in-addr.arpa")
	if first == -1 || second == -1 || first > second {
		t.Error("Install log out of order", got)
	}

	cdr.Abort() // Must be a no-op after Finish
	if len(listNames(t, dir)) != 2 {
		t.Error("Abort after Finish disturbed installed files")
	}
}

func TestStageAbort(t *testing.T) {
	log.SetOut(&mock.IOWriter{})

	dir := t.TempDir()
	cdr := NewCoordinator(dir)

	err := cdr.Stage("example.net", zoneText)
	if err != nil {
		t.Fatal("Stage failed", err)
	}
	err = cdr.Stage("example.org", zoneText)
	if err != nil {
		t.Fatal("Stage failed", err)
	}

	cdr.Abort()
	if cdr.Pending() != 0 {
		t.Error("Pending should be zero after Abort, not", cdr.Pending())
	}
	if names := listNames(t, dir); len(names) != 0 {
		t.Error("Abort left files behind", names)
	}
	cdr.Abort() // Second Abort must not blow up
}

func TestStageCollision(t *testing.T) {
	log.SetOut(&mock.IOWriter{})

	dir := t.TempDir()
	cdr := NewCoordinator(dir)

	// Two stages of the same zone get distinct temporary names and the later
	// rename wins.
	err := cdr.Stage("example.com", "first\n")
	if err != nil {
		t.Fatal("Stage failed", err)
	}
	err = cdr.Stage("example.com", "second\n")
	if err != nil {
		t.Fatal("Stage failed", err)
	}
	if names := listNames(t, dir); len(names) != 2 {
		t.Fatal("Expected two distinct temporary files, got", names)
	}

	err = cdr.Finish()
	if err != nil {
		t.Fatal("Finish failed", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "example.com"))
	if err != nil {
		t.Fatal("ReadFile failed", err)
	}
	if !strings.HasSuffix(string(b), "second\n") {
		t.Error("Later stage should win", string(b))
	}
}

func TestFinishFailure(t *testing.T) {
	log.SetOut(&mock.IOWriter{})

	dir := t.TempDir()
	cdr := NewCoordinator(dir)

	err := cdr.Stage("example.com", zoneText)
	if err != nil {
		t.Fatal("Stage failed", err)
	}

	// Yank the temporary file out from under the rename.
	names := listNames(t, dir)
	if len(names) != 1 {
		t.Fatal("Expected one staged file, got", names)
	}
	err = os.Remove(filepath.Join(dir, names[0]))
	if err != nil {
		t.Fatal("Remove failed", err)
	}

	err = cdr.Finish()
	if err == nil {
		t.Error("Finish should fail when the staged file has vanished")
	}
	if cdr.Pending() != 1 {
		t.Error("Failed rename should stay pending, not", cdr.Pending())
	}
	cdr.Abort()
	if cdr.Pending() != 0 {
		t.Error("Abort should clear the wreckage, not", cdr.Pending())
	}
}

func TestStageBadDirectory(t *testing.T) {
	log.SetOut(&mock.IOWriter{})

	cdr := NewCoordinator("/no/such/directory/anywhere")
	err := cdr.Stage("example.com", zoneText)
	if err == nil {
		t.Error("Stage into a nonexistent directory should fail")
	}
	if cdr.Pending() != 0 {
		t.Error("Failed Stage must not record a pending rename")
	}
}
