package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/zctools/zc/handoff"
	"github.com/zctools/zc/log"
)

type parseResult int // This is a ternary variable
const (
	parseStop     parseResult = iota // No error, but don't continue
	parseContinue                    // No errors and continue
	parseFailed                      // Errors, do not continue
)

// Parse the command line. Positional arguments are the zone source files, so unlike
// many tools there is no "unexpected arguments" complaint here; an empty list is
// caught later by validation where the mode makes it an error.
//
// pflag happily accepts the same option twice without a murmur, which hides typos in
// hook scripts that assemble command lines, so duplicates are rejected here except for
// the documentation options a user may well fumble repeatedly.
func (t *zc) parseOptions(args []string) parseResult {
	var helpFlag, versionFlag bool

	name := programName
	if len(args) > 0 {
		name = args[0]
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Consider '-h' for command-line usage")
	}
	fs.SetOutput(log.Out())

	// Non-config flags

	fs.BoolVarP(&helpFlag, "help", "h", false, "Print command-line usage")
	fs.BoolVarP(&versionFlag, "version", "v", false, "Print version and origin URL")

	// config flags

	fs.BoolVar(&t.cfg.checkFlag, "check", false,
		"Compile and validate the inputs, write nothing")
	fs.BoolVar(&t.cfg.waitFlag, "wait", false,
		`Stage the output then wait for the commit to be confirmed on the
handoff pipe before installing. Requires --commit.`)

	fs.BoolVarP(&t.cfg.quietFlag, "quiet", "q", false,
		"Suppress all logging, warnings included")
	fs.BoolVar(&t.cfg.verboseFlag, "verbose", false,
		"Log details of each step to Stdout")
	fs.BoolVar(&t.cfg.debugFlag, "debug", false,
		"Log debug events to Stdout - this implies --verbose")

	// config strings and durations

	fs.StringVarP(&t.cfg.outputDir, "output", "o", ".",
		"Directory the compiled zone files are installed into")
	fs.StringVar(&t.cfg.gitDir, "git-dir", ".",
		`Repository for --commit. May name a bare repository, a work tree
or any directory inside one.`)
	fs.StringVar(&t.cfg.commitRev, "commit", "",
		`Compile the inputs from this commit's tree instead of the file
system. The resolved commit id becomes the handoff token.`)
	fs.StringVar(&t.cfg.sinceRev, "since", "",
		`Skip compiling when no named input changed between this revision
and --commit. Files reached only via $INCLUDE are not considered.`)
	fs.StringVar(&t.cfg.confirmToken, "confirm", "",
		`Consumer mode: write this token to the handoff pipe, releasing
the producer waiting on it, then exit. Nothing is compiled.`)
	fs.StringVar(&t.cfg.onCommit, "on-commit", "",
		`Shell command run once after a confirmed transaction installs,
typically a name server reload or notify. Requires --wait.`)
	fs.StringVar(&t.cfg.pipeName, "pipe-name", handoff.DefaultPipeName,
		"File name of the handoff pipe inside the output directory")

	fs.DurationVar(&t.cfg.timeout, "timeout", handoff.DefaultTimeout,
		"How long --wait holds a staged transaction before giving up (>= 1s)")

	////////////////////////////////////////

	dupes := make(map[string]bool) // True means dupes are ok

	dupes["help"] = true    // Documentation options that never run the compiler
	dupes["version"] = true // can be duplicated because the user may be fumbling
	// around trying to work it out.

	err := fs.ParseAll(args[1:],
		func(f *flag.Flag, v string) error {
			if tf, ok := dupes[f.Name]; ok {
				if tf {
					return fs.Set(f.Name, v)
				}
				return fmt.Errorf("Duplicate option '--%v %v' not allowed",
					f.Name, v)
			}
			dupes[f.Name] = false
			return fs.Set(f.Name, v)
		})

	if err != nil {
		fmt.Fprintln(log.Out(), "Error:", err.Error())
		return parseFailed
	}

	// Handle all documentation options locally

	if helpFlag {
		printUsage(t.cfg, fs)
		fmt.Fprintln(log.Out())
		t.cfg.printVersion()
		return parseStop
	}

	if versionFlag {
		t.cfg.printVersion()
		return parseStop
	}

	t.cfg.inputs = fs.Args()

	return parseContinue
}

func printUsage(cfg *config, fs *flag.FlagSet) {
	o := log.Out()
	fmt.Fprintln(o, "NAME")
	fmt.Fprintln(o, " ", programName, "-- compile compact host notation into DNS zone files")
	fmt.Fprintln(o)
	fmt.Fprintln(o, "SYNOPSIS")
	fmt.Fprintln(o, "     zc -h | --help | -v | --version")
	fmt.Fprintln(o, "     zc [--check] [--output dir] zone-source…")
	fmt.Fprintln(o, "     zc --commit rev [--git-dir dir] [--since rev] [--wait]")
	fmt.Fprintln(o, "        [--on-commit command] [--timeout duration] zone-source…")
	fmt.Fprintln(o, "     zc --confirm token [--output dir] [--pipe-name name]")
	fmt.Fprint(o, `
DESCRIPTION
     zc compiles a compact, human-edited host notation into standard DNS
     zone files and derives the matching reverse zones from the forward
     data as it goes. Each input file produces one forward zone plus PTR
     records distributed into the reverse zones it declares with
     $REVERSE_ZONE. All generated files are installed into --output as
     one atomic batch of renames, or not at all.

     Run from a pair of git hooks, --wait and --confirm form a
     two-process handshake. The update hook compiles the pushed commit,
     stages the output and waits; the post-receive hook confirms the
     commit id once the push is final, which releases the staged files
     for installation. A transaction that is never confirmed within
     --timeout is removed without trace.

     A typical direct invocation is:

           # zc --output /var/nsd/zones example.zone

     and the matching hook pair is:

           update:       zc --git-dir . --commit $3 --wait \
                            --output /var/nsd/zones example.zone &
           post-receive: zc --confirm $newrev --output /var/nsd/zones
`)
	fmt.Fprintln(o)
	fmt.Fprintln(o, "OPTIONS")
	op := fs.Output() // Save and restore - not sure this is a good idea
	fs.SetOutput(o)
	fs.PrintDefaults()
	fs.SetOutput(op)

	fmt.Fprint(o, `
NOTES
  1. The input notation is ordinary zone-file text plus the directives
     $ORIGIN, $TTL, $INCLUDE, $MAP, $MAP_RULE, $RANGE and $REVERSE_ZONE.
     Lines of exactly two fields are 'name address' pairs and become A or
     AAAA records according to the address family; everything else passes
     through to the generated zone untouched.
  2. $INCLUDE splices the named file into the line stream, so an $ORIGIN
     inside an included file persists into the including file.
  3. The literal token @SERIAL@ in an SOA line is replaced by the Unix
     time captured once per run, giving every zone the same serial.

SIGNALS
  SIGHUP, SIGINT and SIGTERM abandon a waiting transaction and remove its
  staged files.
`)
}
