// Package compiler turns the compact host notation into standard zone-file text. The
// input is a loose superset of zone-file syntax: most lines pass straight through, a
// two-field line is shorthand for an address record, and a small set of $-directives
// drives origin tracking, address mapping, range generation and reverse zone
// declaration. The accumulated output is validated as a whole by the zone package
// before anything else is allowed to happen to it.
//
// One compiler instance processes one input file, though that file may pull in others
// via $INCLUDE. Run-wide state, namely the shared serial number and the reverse zone
// registry, stays with the caller so that compiling several inputs together remains an
// explicit, testable affair.
package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/miekg/dns"

	"github.com/zctools/zc/addr"
	"github.com/zctools/zc/log"
	"github.com/zctools/zc/zone"
)

// SerialPlaceholder is the literal token in an SOA line which is replaced by the
// run-wide serial number. Every input compiled in one run receives the same value so
// related zones advance in lockstep.
const SerialPlaceholder = "@SERIAL@"

// maxIncludes bounds how many files one compilation will splice in. Since $INCLUDE
// splices rather than nests there is no call stack to overflow and a self-including
// file would otherwise spin forever.
const maxIncludes = 1000

// Opener supplies the raw content of named input files. The compiler never touches
// the file system itself; names are passed to the Opener verbatim, so whether they are
// paths, tree entries in a commit, or keys in a test map is the Opener's business.
type Opener interface {
	Open(name string) (string, error)
}

// line is one raw input line tagged with its provenance for error reporting.
type line struct {
	file string
	num  int // 1-based within file
	text string
}

// mapRule is one $MAP_RULE entry. Rules accumulate for the whole compilation and are
// evaluated in insertion order with the first matching prefix winning.
type mapRule struct {
	prefix   addr.Prefix
	template string
}

type compiler struct {
	opener   Opener
	serial   string
	includes int

	pending     []line // The working line stream, spliced into by $INCLUDE
	fixedOrigin string // First $ORIGIN seen; names the zone and never changes
	origin      string // Current resolution origin; tracks every $ORIGIN
	mapping     bool
	rules       []mapRule
	reverses    []string // Declared reverse zone names in declaration order
	out         []string
}

// Compile processes one input file and returns the validated forward zone. The serial
// is the wall-clock value captured once per run and substituted for
// SerialPlaceholder. All errors are *Error values carrying file and line context where
// a single line is to blame.
func Compile(opener Opener, name string, serial int64) (*zone.Forward, error) {
	t := &compiler{
		opener: opener,
		serial: strconv.FormatInt(serial, 10),
	}

	if err := t.include(name); err != nil {
		return nil, &Error{Kind: ConfigError, File: name, Err: err}
	}

	for len(t.pending) > 0 {
		ln := t.pending[0]
		t.pending = t.pending[1:]
		if err := t.process(ln); err != nil {
			return nil, err
		}
	}

	if len(t.fixedOrigin) == 0 {
		return nil, &Error{Kind: StructuralError, File: name,
			Err: fmt.Errorf("no $ORIGIN directive was ever seen")}
	}

	text := strings.Join(t.out, "\n")
	if len(text) > 0 {
		text += "\n"
	}
	fwd, err := zone.Parse(t.fixedOrigin, text, t.reverses)
	if err != nil {
		return nil, &Error{Kind: StructuralError, File: name, Err: err}
	}

	return fwd, nil
}

// include splices the lines of the named file ahead of all pending lines. Origin
// changes made by an included file deliberately persist into the continuation of the
// includer; inclusion is positional, not call and return.
func (t *compiler) include(name string) error {
	if t.includes >= maxIncludes {
		return fmt.Errorf("more than %d included files suggests an inclusion loop",
			maxIncludes)
	}
	t.includes++

	content, err := t.opener.Open(name)
	if err != nil {
		return err
	}

	raw := strings.Split(content, "\n")
	if len(raw) > 0 && len(raw[len(raw)-1]) == 0 { // Discard the after-final-newline phantom
		raw = raw[:len(raw)-1]
	}
	spliced := make([]line, 0, len(raw)+len(t.pending))
	for ix, s := range raw {
		spliced = append(spliced, line{file: name, num: ix + 1,
			text: strings.TrimSuffix(s, "\r")})
	}
	t.pending = append(spliced, t.pending...)
	log.Debugf("spliced %d lines from %s", len(raw), name)

	return nil
}

// process handles one input line: strip the trailing comment, then either dispatch a
// directive, emit a name/address pair, or pass the line through with a structural
// check. Blank and comment-only lines pass through untouched and unchecked.
func (t *compiler) process(ln line) error {
	body, comment := splitComment(ln.text)
	fields := strings.Fields(body)

	if len(fields) == 0 {
		t.out = append(t.out, ln.text)
		return nil
	}

	if strings.HasPrefix(fields[0], "$") {
		if handler, ok := directives[strings.TrimPrefix(fields[0], "$")]; ok {
			return handler(t, ln, fields, comment)
		}
		// Not one of ours. The pass-through check decides its fate: lines the
		// zone grammar itself understands, such as $GENERATE, survive and
		// anything else aborts the run.
		return t.passThrough(ln, body, comment, fields)
	}

	if len(fields) == 2 {
		return t.pair(ln, fields, comment)
	}

	return t.passThrough(ln, body, comment, fields)
}

// pair emits an address record for a two-field name/address line, plus a second
// record derived from the first matching mapping rule when mapping is enabled.
func (t *compiler) pair(ln line, fields []string, comment string) error {
	v, err := addr.Parse(fields[1])
	if err != nil {
		return t.classify(ln, err)
	}
	t.emitPair(fields[0], v, comment)

	if t.mapping {
		mapped, ok, err := t.mapAddress(v)
		if err != nil {
			return t.classify(ln, err)
		}
		if ok {
			t.emitPair(fields[0], mapped, comment)
		}
	}

	return nil
}

// passThrough copies a line into the output buffer after substituting the serial
// placeholder and vetting the line against the zone grammar under the current
// resolution origin.
func (t *compiler) passThrough(ln line, body, comment string, fields []string) error {
	body = t.substituteSerial(body, fields)
	if err := zone.CheckRecord(body, t.origin); err != nil {
		return t.fail(SyntaxError, ln, err)
	}
	t.out = append(t.out, body+comment)

	return nil
}

// substituteSerial replaces the serial placeholder on a line which plausibly is an
// SOA record: it must contain the literal token SOA and have at least nine fields.
// The placeholder is matched as a whole token wherever it stands; by RFC 1035 field
// order that is normally the serial slot in the middle of the rdata, though a
// trailing position is accepted too.
func (t *compiler) substituteSerial(body string, fields []string) string {
	if len(fields) < 9 {
		return body
	}
	placed := false
	soa := false
	for _, f := range fields {
		switch f {
		case SerialPlaceholder:
			placed = true
		case "SOA":
			soa = true
		}
	}
	if !placed || !soa {
		return body
	}

	ix := strings.Index(body, SerialPlaceholder)

	return body[:ix] + t.serial + body[ix+len(SerialPlaceholder):]
}

// emitPair appends one formatted address record. The name column is fixed width so
// hand-written and generated lines read uniformly; the original trailing comment, if
// any, tags along.
func (t *compiler) emitPair(name string, v addr.Value, comment string) {
	s := fmt.Sprintf("%-31s %-4s %s", name, v.Family().RRType(), v)
	if len(comment) > 0 {
		s += " " + comment
	}
	t.out = append(t.out, s)
}

// mapAddress runs v through the accumulated mapping rules and returns the derived
// address from the first rule whose prefix matches, if any.
func (t *compiler) mapAddress(v addr.Value) (addr.Value, bool, error) {
	for _, r := range t.rules {
		if !r.prefix.Matches(v) {
			continue
		}
		text, err := expandTemplate(r.template, v.String(), v.Bytes())
		if err != nil {
			return addr.Value{}, false, err
		}
		mapped, err := addr.Parse(text)
		if err != nil {
			return addr.Value{}, false, err
		}

		return mapped, true, nil
	}

	return addr.Value{}, false, nil
}

// setOrigin tracks an $ORIGIN directive. A relative name is resolved against the
// current origin just as the zone parser will do when it re-reads the emitted line.
func (t *compiler) setOrigin(name string) {
	if !dns.IsFqdn(name) && len(t.origin) > 0 {
		name += "." + t.origin
	}
	name = dns.CanonicalName(name)
	t.origin = name
	if len(t.fixedOrigin) == 0 {
		t.fixedOrigin = name
	}
}

// classify wraps errors bubbling up from address parsing and template expansion:
// malformed address or prefix text is a FormatError, everything else a ConfigError.
func (t *compiler) classify(ln line, err error) *Error {
	var fe *addr.FormatError
	if errors.As(err, &fe) {
		return t.fail(FormatError, ln, err)
	}

	return t.fail(ConfigError, ln, err)
}

func (t *compiler) fail(kind Kind, ln line, cause error) *Error {
	return &Error{Kind: kind, File: ln.file, Line: ln.num,
		Text: strings.TrimSpace(ln.text), Err: cause}
}

func (t *compiler) failf(kind Kind, ln line, format string, a ...any) *Error {
	return t.fail(kind, ln, fmt.Errorf(format, a...))
}

// splitComment splits a raw line at the first unescaped semicolon. The comment half
// retains the semicolon so the two halves reassemble exactly. A semicolon inside a
// quoted string is not special here, which matches the rest of the notation's
// line-at-a-time worldview.
func splitComment(raw string) (body, comment string) {
	for ix := 0; ix < len(raw); ix++ {
		if raw[ix] == ';' && (ix == 0 || raw[ix-1] != '\\') {
			return raw[:ix], raw[ix:]
		}
	}

	return raw, ""
}
