package main

import (
	"fmt"
	"time"

	"github.com/zctools/zc/log"
)

const (
	programName       = "zc"
	defaultProjectURL = "https://github.com/zctools/zc"
)

// config holds the command-line settings for one run. It is filled in by parseOptions
// and never modified after validation.
type config struct {
	checkFlag bool // Compile and validate only, write nothing
	waitFlag  bool // Producer mode: stage then await confirmation

	quietFlag   bool
	verboseFlag bool
	debugFlag   bool

	outputDir    string        // Target directory for installed zones and the pipe
	gitDir       string        // Repository supplying --commit
	commitRev    string        // Revision the inputs are compiled from
	sinceRev     string        // Skip compiling when nothing changed since here
	confirmToken string        // Consumer mode: token to write to the pipe
	onCommit     string        // Shell command run after a confirmed install
	pipeName     string        // Handoff pipe file name within outputDir
	timeout      time.Duration // Wait budget for the handshake

	inputs []string // Zone source files in command-line order

	projectURL string
}

func newConfig() *config {
	return &config{projectURL: defaultProjectURL}
}

func (t *config) printVersion() {
	fmt.Fprintf(log.Out(), "Program: %s %s (%s)\n", programName, Version, ReleaseDate)
	fmt.Fprintf(log.Out(), "Project: %s\n", t.projectURL)
}
