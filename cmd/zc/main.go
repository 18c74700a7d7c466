package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/zctools/zc/log"
)

func reportError(severity string, err error, messages ...string) {
	msg := severity
	if len(messages) > 0 {
		msg += ": " + strings.Join(messages, " ")
	}
	if err != nil {
		msg += ": " + err.Error()
	}
	fmt.Fprintln(log.Out(), msg)
}

func fatal(err error, messages ...string) {
	reportError("Fatal", err, messages...)
	os.Exit(1)
}

func warning(err error, messages ...string) {
	reportError("Warning", err, messages...)
}

//////////////////////////////////////////////////////////////////////

func main() {
	z := newZC()
	switch z.parseOptions(os.Args) {
	case parseStop:
		return
	case parseFailed:
		os.Exit(1)
	case parseContinue:
	}

	// Transfer logging options to the log package

	switch {
	case z.cfg.debugFlag:
		log.SetLevel(log.DebugLevel)
	case z.cfg.verboseFlag:
		log.SetLevel(log.DetailLevel)
	case z.cfg.quietFlag:
		log.SetLevel(log.SilentLevel)
	}

	// Validate everything that is likely a typo or usage error
	err := z.ValidateCommandLineOptions()
	if err != nil {
		fatal(err)
	}

	err = z.Run()
	if err != nil {
		fatal(err)
	}
}
