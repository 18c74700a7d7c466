// Package zone is the boundary between the compiler's accumulated text and structured
// DNS data. Everything which requires real knowledge of zone-file grammar is delegated
// to miekg/dns; this package merely decides what to ask of it and what to make of the
// answers. The two entry points the compiler relies on are CheckRecord for vetting a
// single pass-through line and Parse for validating a fully assembled zone. Synthesis
// of reverse zones from parsed forward data lives in reverse.go.
package zone

import (
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"

	"github.com/zctools/zc/dnsutil"
)

// fallbackTTL is applied by the zone parser when record lines carry no explicit TTL
// and no $TTL directive precedes them.
const fallbackTTL = 3600

// Forward is the validated, structured result of compiling one input file. It retains
// the compiled text verbatim since that text, not a re-serialization, is what gets
// installed.
type Forward struct {
	origin   string   // Canonical apex name, always fully qualified
	text     string   // Compiled zone text exactly as accumulated
	reverses []string // Declared reverse zone origins in declaration order
	records  []dns.RR // Every parsed record in file order
}

// Parse validates compiled zone text against its fixed origin and returns the
// structured result. The reverses list names the reverse zones this forward zone wants
// populated; they are canonicalized here and otherwise taken on trust until
// Synthesize. In keeping with the expectations for a zone which will be served, the
// apex must carry an SOA record and at least one NS record.
func Parse(origin, text string, reverses []string) (*Forward, error) {
	fwd := &Forward{
		origin: dns.CanonicalName(origin),
		text:   text,
	}
	for _, r := range reverses {
		fwd.reverses = append(fwd.reverses, dns.CanonicalName(r))
	}

	zp := dns.NewZoneParser(strings.NewReader(text), fwd.origin, "")
	zp.SetIncludeAllowed(false) // Inclusion was resolved during compilation
	zp.SetDefaultTTL(fallbackTTL)
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		fwd.records = append(fwd.records, rr)
	}
	if err := zp.Err(); err != nil {
		return nil, &ParseError{Origin: fwd.origin, Err: err}
	}

	var haveSOA, haveNS bool
	for _, rr := range fwd.records {
		if dns.CanonicalName(rr.Header().Name) != fwd.origin {
			continue
		}
		switch rr.(type) {
		case *dns.SOA:
			haveSOA = true
		case *dns.NS:
			haveNS = true
		}
	}
	if !haveSOA {
		return nil, &ParseError{Origin: fwd.origin,
			Err: fmt.Errorf("no SOA record at the zone apex")}
	}
	if !haveNS {
		return nil, &ParseError{Origin: fwd.origin,
			Err: fmt.Errorf("no NS records at the zone apex")}
	}

	return fwd, nil
}

// Origin returns the canonical apex name of the zone.
func (t *Forward) Origin() string {
	return t.origin
}

// FileName returns the on-disk name for the zone: the origin with the trailing root
// label omitted.
func (t *Forward) FileName() string {
	return dnsutil.ChompCanonicalName(t.origin)
}

// Text returns the compiled zone text exactly as accumulated by the compiler.
func (t *Forward) Text() string {
	return t.text
}

// ReverseNames returns the declared reverse zone origins in declaration order.
func (t *Forward) ReverseNames() []string {
	return append([]string(nil), t.reverses...)
}

// Records returns every record of the given type in file order.
func (t *Forward) Records(rrType uint16) (matched []dns.RR) {
	for _, rr := range t.records {
		if rr.Header().Rrtype == rrType {
			matched = append(matched, rr)
		}
	}

	return
}

// apexSOA returns the first SOA record at the zone apex. Parse guarantees one exists.
func (t *Forward) apexSOA() dns.RR {
	for _, rr := range t.records {
		if _, ok := rr.(*dns.SOA); ok &&
			dns.CanonicalName(rr.Header().Name) == t.origin {
			return rr
		}
	}

	panic("zone: Forward with no apex SOA escaped Parse")
}

// apexNS returns the apex NS record set in file order.
func (t *Forward) apexNS() (matched []dns.RR) {
	for _, rr := range t.records {
		if _, ok := rr.(*dns.NS); ok &&
			dns.CanonicalName(rr.Header().Name) == t.origin {
			matched = append(matched, rr)
		}
	}

	return
}

// CheckRecord runs one candidate record line through the zone parser using the
// caller's resolution origin. Directive lines the parser itself understands, such as
// $TTL and $GENERATE, are accepted as a side effect; anything it rejects comes back as
// the parser's own error.
func CheckRecord(line, origin string) error {
	zp := dns.NewZoneParser(strings.NewReader(line), dns.CanonicalName(origin), "")
	zp.SetIncludeAllowed(false)
	zp.SetDefaultTTL(fallbackTTL)
	for _, ok := zp.Next(); ok; _, ok = zp.Next() {
	}

	return zp.Err()
}

// ReverseName returns the canonical reverse-lookup owner name for ip, which always
// falls under in-addr.arpa or ip6.arpa.
func ReverseName(ip net.IP) (string, error) {
	owner := dnsutil.IPToReverseQName(ip)
	if len(owner) == 0 {
		return "", fmt.Errorf("'%s' has no reverse-lookup form", ip)
	}

	return owner, nil
}

// ParseError reports compiled zone text which failed the zone-level structural
// parse. There is no useful file and line context by this stage since the text was
// assembled from potentially many sources.
type ParseError struct {
	Origin string
	Err    error
}

func (t *ParseError) Error() string {
	return fmt.Sprintf("zone %s: %s", t.Origin, t.Err.Error())
}

func (t *ParseError) Unwrap() error {
	return t.Err
}
