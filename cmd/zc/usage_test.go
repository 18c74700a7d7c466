package main

import (
	"strings"
	"testing"

	"github.com/zctools/zc/handoff"
	"github.com/zctools/zc/log"
	"github.com/zctools/zc/mock"
)

func TestUsage(t *testing.T) {
	out := &mock.IOWriter{}
	log.SetOut(out)
	z := newZC()

	testCases := []struct {
		options string
		expect  string
		result  parseResult
	}{
		{"", "", parseContinue},
		{"-h", "SYNOPSIS", parseStop},
		{"--help", "SYNOPSIS", parseStop},
		{"-v", "Program:", parseStop},
		{"--version", "Program:", parseStop},
		{"-X", "unknown shorthand flag", parseFailed},
		{"--no-such-option", "unknown flag", parseFailed},
		{"--check --check", "Duplicate option", parseFailed},
		{"--output /tmp --output /tmp", "Duplicate option", parseFailed},
		{"--timeout notaduration", "invalid argument", parseFailed},
		{"example.zone other.zone", "", parseContinue},
		{"--check example.zone", "", parseContinue},
		{"example.zone --check", "", parseContinue}, // Interspersed is allowed
		{"--commit HEAD --since HEAD~1 --git-dir /tmp --wait" +
			" --on-commit reload --timeout 30s --pipe-name .p" +
			" --output /tmp -q --verbose --debug example.zone",
			"", parseContinue}, // Every legit option
	}

	for ix, tc := range testCases {
		var opts []string
		if len(tc.options) > 0 {
			opts = strings.Split(tc.options, " ")
		}
		args := []string{programName}
		args = append(args, opts...)
		out.Reset()
		res := z.parseOptions(args)
		if res != tc.result {
			t.Error(ix, "Results mismatch. Want", tc.result, "got", res)
		}
		got := out.String()
		if len(tc.expect) == 0 && len(got) != 0 {
			t.Error(ix, "Did not expect any output, but got", len(got), got)
		}
		if len(tc.expect) > 0 {
			if !strings.Contains(got, tc.expect) {
				t.Error(ix, "Output does not contain", tc.expect, "got", got)
			}
		}
	}
}

// Parsed values must land in the config, and absent options must land as defaults.
func TestParseValues(t *testing.T) {
	log.SetOut(&mock.IOWriter{})
	z := newZC()

	res := z.parseOptions([]string{programName,
		"--check", "--output", "/tmp/zones", "a.zone", "b.zone"})
	if res != parseContinue {
		t.Fatal("Expected parseContinue, got", res)
	}
	if !z.cfg.checkFlag {
		t.Error("--check did not set checkFlag")
	}
	if z.cfg.outputDir != "/tmp/zones" {
		t.Error("--output mismatch", z.cfg.outputDir)
	}
	if len(z.cfg.inputs) != 2 || z.cfg.inputs[0] != "a.zone" || z.cfg.inputs[1] != "b.zone" {
		t.Error("Positional inputs mismatch", z.cfg.inputs)
	}
	if z.cfg.pipeName != handoff.DefaultPipeName {
		t.Error("pipeName default mismatch", z.cfg.pipeName)
	}
	if z.cfg.timeout != handoff.DefaultTimeout {
		t.Error("timeout default mismatch", z.cfg.timeout)
	}
}
