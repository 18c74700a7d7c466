package main

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Check everything that could likely be a typo or usage error before any work starts.
// Mostly checked in the order presented by the flag package.
func (t *zc) ValidateCommandLineOptions() error {
	cfg := t.cfg

	if len(cfg.confirmToken) > 0 {
		if len(cfg.inputs) > 0 || cfg.checkFlag || cfg.waitFlag ||
			len(cfg.commitRev) > 0 || len(cfg.onCommit) > 0 {
			return fmt.Errorf("--confirm runs alone, not with inputs or compile options")
		}
	} else if len(cfg.inputs) == 0 {
		return fmt.Errorf("Must supply at least one zone source file")
	}

	if cfg.waitFlag && len(cfg.commitRev) == 0 {
		return fmt.Errorf("--wait requires --commit to name the transaction")
	}
	if cfg.waitFlag && cfg.checkFlag {
		return fmt.Errorf("Cannot have both --check and --wait")
	}
	if len(cfg.onCommit) > 0 && !cfg.waitFlag {
		return fmt.Errorf("--on-commit requires --wait")
	}
	if len(cfg.sinceRev) > 0 && len(cfg.commitRev) == 0 {
		return fmt.Errorf("--since requires --commit")
	}

	if cfg.timeout < time.Second {
		return fmt.Errorf("--timeout must be at least 1 second")
	}

	if len(cfg.pipeName) == 0 || strings.ContainsAny(cfg.pipeName, `/\`) {
		return fmt.Errorf("--pipe-name must be a bare file name, not '%s'", cfg.pipeName)
	}

	// Every mode which touches the output directory deserves an early, readable
	// complaint rather than a failed rename deep into the run.
	if !cfg.checkFlag {
		fi, err := os.Stat(cfg.outputDir)
		if err != nil {
			return fmt.Errorf("--output directory is not usable: %w", err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("--output '%s' is not a directory", cfg.outputDir)
		}
	}

	return nil
}
