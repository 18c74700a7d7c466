package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/zctools/zc/log"
	"github.com/zctools/zc/mock"
)

const runZoneSource = `$ORIGIN example.com.
$REVERSE_ZONE 0.0.10.in-addr.arpa
@ 3600 SOA ns1 hostmaster @SERIAL@ 10800 3600 604800 3600
@ NS ns1
ns1 10.0.0.53
www 10.0.0.80 ; web frontend
`

// runWith parses and validates the supplied arguments then calls Run.
func runWith(t *testing.T, args ...string) error {
	t.Helper()
	z := newZC()
	full := append([]string{programName}, args...)
	if z.parseOptions(full) != parseContinue {
		t.Fatal("Options did not parse:", args)
	}
	err := z.ValidateCommandLineOptions()
	if err != nil {
		t.Fatal("Validation failed", err)
	}

	return z.Run()
}

func TestRunDirectInstall(t *testing.T) {
	log.SetOut(&mock.IOWriter{})

	srcDir := t.TempDir()
	outDir := t.TempDir()
	src := filepath.Join(srcDir, "example.zone")
	err := os.WriteFile(src, []byte(runZoneSource), 0644)
	if err != nil {
		t.Fatal("WriteFile failed", err)
	}

	err = runWith(t, "--output", outDir, src)
	if err != nil {
		t.Fatal("Run failed", err)
	}

	fwd, err := os.ReadFile(filepath.Join(outDir, "example.com"))
	if err != nil {
		t.Fatal("Forward zone not installed", err)
	}
	text := string(fwd)
	if !strings.HasPrefix(text, "; Generated by zc at ") {
		t.Error("Missing generation header", text)
	}
	if !strings.Contains(text, "$ORIGIN example.com.") {
		t.Error("Missing $ORIGIN line", text)
	}
	if !strings.Contains(text, "ns1                             A    10.0.0.53") {
		t.Error("Missing pair emission for ns1", text)
	}
	if !strings.Contains(text, "www                             A    10.0.0.80 ; web frontend") {
		t.Error("Pair emission lost its comment", text)
	}
	if strings.Contains(text, "@SERIAL@") {
		t.Error("Serial placeholder survived", text)
	}

	rev, err := os.ReadFile(filepath.Join(outDir, "0.0.10.in-addr.arpa"))
	if err != nil {
		t.Fatal("Reverse zone not installed", err)
	}
	text = string(rev)
	if !strings.Contains(text, "53.0.0.10.in-addr.arpa.\t3600\tIN\tPTR\tns1.example.com.") {
		t.Error("Missing PTR for ns1", text)
	}
	if !strings.Contains(text, "80.0.0.10.in-addr.arpa.\t3600\tIN\tPTR\twww.example.com.") {
		t.Error("Missing PTR for www", text)
	}

	// No staged leftovers anywhere.
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal("ReadDir failed", err)
	}
	if len(entries) != 2 {
		t.Error("Expected exactly two installed files, got", entries)
	}
}

func TestRunCheck(t *testing.T) {
	out := &mock.IOWriter{}
	log.SetOut(out)

	srcDir := t.TempDir()
	outDir := t.TempDir()
	src := filepath.Join(srcDir, "example.zone")
	err := os.WriteFile(src, []byte(runZoneSource), 0644)
	if err != nil {
		t.Fatal("WriteFile failed", err)
	}

	err = runWith(t, "--check", "--output", outDir, src)
	if err != nil {
		t.Fatal("Run failed", err)
	}
	if !out.Contains("check passed") {
		t.Error("Expected a check report, got", out.String())
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal("ReadDir failed", err)
	}
	if len(entries) != 0 {
		t.Error("--check must write nothing, got", entries)
	}
}

func TestRunCompileError(t *testing.T) {
	log.SetOut(&mock.IOWriter{})

	srcDir := t.TempDir()
	outDir := t.TempDir()
	src := filepath.Join(srcDir, "bad.zone")
	bad := "$ORIGIN example.com.\n@ 3600 SOA ns1 h 1 2 3 4 5\n$BOGUS what is this\n"
	err := os.WriteFile(src, []byte(bad), 0644)
	if err != nil {
		t.Fatal("WriteFile failed", err)
	}

	err = runWith(t, "--output", outDir, src)
	if err == nil {
		t.Fatal("A bogus directive should fail the run")
	}
	if !strings.Contains(err.Error(), ":3:") || !strings.Contains(err.Error(), "$BOGUS") {
		t.Error("Error should carry file position and text", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal("ReadDir failed", err)
	}
	if len(entries) != 0 {
		t.Error("A failed run must write nothing, got", entries)
	}
}

func TestRunDuplicateOrigin(t *testing.T) {
	log.SetOut(&mock.IOWriter{})

	srcDir := t.TempDir()
	outDir := t.TempDir()
	one := filepath.Join(srcDir, "one.zone")
	two := filepath.Join(srcDir, "two.zone")
	for _, p := range []string{one, two} {
		err := os.WriteFile(p, []byte(runZoneSource), 0644)
		if err != nil {
			t.Fatal("WriteFile failed", err)
		}
	}

	err := runWith(t, "--output", outDir, one, two)
	if err == nil {
		t.Fatal("Two inputs producing one zone should fail the run")
	}
	if !strings.Contains(err.Error(), "produced by both") {
		t.Error("Unexpected error", err)
	}
}

// commitZone commits content as example.zone in a fresh on-disk repository.
func commitZone(t *testing.T, repoDir, content string) string {
	t.Helper()
	r, err := git.PlainInit(repoDir, false)
	if err != nil {
		t.Fatal("PlainInit failed", err)
	}
	wt, err := r.Worktree()
	if err != nil {
		t.Fatal("Worktree failed", err)
	}
	err = os.WriteFile(filepath.Join(repoDir, "example.zone"), []byte(content), 0644)
	if err != nil {
		t.Fatal("WriteFile failed", err)
	}
	_, err = wt.Add("example.zone")
	if err != nil {
		t.Fatal("Add failed", err)
	}
	hash, err := wt.Commit("zones", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "zc test",
			Email: "zc@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatal("Commit failed", err)
	}

	return hash.String()
}

func TestRunFromCommit(t *testing.T) {
	out := &mock.IOWriter{}
	log.SetOut(out)

	repoDir := t.TempDir()
	outDir := t.TempDir()
	hash := commitZone(t, repoDir, runZoneSource)

	// Sabotage the working copy to prove the commit tree is the source.
	err := os.WriteFile(filepath.Join(repoDir, "example.zone"), []byte("garbage\n"), 0644)
	if err != nil {
		t.Fatal("WriteFile failed", err)
	}

	err = runWith(t, "--git-dir", repoDir, "--commit", hash,
		"--output", outDir, "example.zone")
	if err != nil {
		t.Fatal("Run failed", err)
	}
	fwd, err := os.ReadFile(filepath.Join(outDir, "example.com"))
	if err != nil {
		t.Fatal("Forward zone not installed", err)
	}
	if !strings.Contains(string(fwd), "10.0.0.53") {
		t.Error("Installed zone is not the committed content", string(fwd))
	}

	// The same commit as --since means nothing changed, so nothing happens.
	outDir2 := t.TempDir()
	out.Reset()
	err = runWith(t, "--git-dir", repoDir, "--commit", hash, "--since", hash,
		"--output", outDir2, "example.zone")
	if err != nil {
		t.Fatal("Run failed", err)
	}
	if !out.Contains("nothing to do") {
		t.Error("Expected the no-change skip, got", out.String())
	}
	entries, err := os.ReadDir(outDir2)
	if err != nil {
		t.Fatal("ReadDir failed", err)
	}
	if len(entries) != 0 {
		t.Error("A skipped run must write nothing, got", entries)
	}
}
