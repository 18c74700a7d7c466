package zone

import (
	"net"
	"strings"

	"github.com/miekg/dns"

	"github.com/zctools/zc/dnsutil"
	"github.com/zctools/zc/log"
)

// Registry is the run-wide collection of reverse zones keyed by origin name. A single
// Registry is shared by every forward zone compiled in one run so that multiple
// forward zones can contribute PTR records to the same reverse zone. Creation order is
// retained because reverse zones are installed ahead of forward zones in that order.
type Registry struct {
	zones map[string]*Reverse
	order []string
}

func NewRegistry() *Registry {
	return &Registry{zones: make(map[string]*Reverse)}
}

// Zones returns the reverse zones in creation order.
func (t *Registry) Zones() []*Reverse {
	zones := make([]*Reverse, 0, len(t.order))
	for _, origin := range t.order {
		zones = append(zones, t.zones[origin])
	}

	return zones
}

// Lookup returns the reverse zone with the given origin name, canonicalized on the
// caller's behalf.
func (t *Registry) Lookup(origin string) (*Reverse, bool) {
	rev, ok := t.zones[dns.CanonicalName(origin)]

	return rev, ok
}

// Synthesize populates the registry from one validated forward zone. A reverse zone
// declared by the forward zone is created on first sight with the forward zone's apex
// SOA and NS records copied across under the reverse origin; later declarations of the
// same origin, by this or any other forward zone, reuse the existing entry. Every A
// and AAAA record in the forward zone then gains a PTR record in the first declared
// reverse zone which is a proper ancestor of the reverse owner name, tested in
// declaration order. An address which matches none of the declared reverse zones is
// warned about and skipped. A forward zone which declares no reverse zones contributes
// nothing and warns about nothing.
func (t *Registry) Synthesize(fwd *Forward) error {
	if len(fwd.reverses) == 0 {
		return nil
	}

	for _, origin := range fwd.reverses {
		if _, ok := t.zones[origin]; ok {
			continue
		}
		rev := &Reverse{origin: origin}
		rev.add(reparent(fwd.apexSOA(), origin))
		for _, ns := range fwd.apexNS() {
			rev.add(reparent(ns, origin))
		}
		t.zones[origin] = rev
		t.order = append(t.order, origin)
	}

	for _, rr := range fwd.records {
		var ip net.IP
		switch rec := rr.(type) {
		case *dns.A:
			ip = rec.A
		case *dns.AAAA:
			ip = rec.AAAA
		default:
			continue
		}

		owner, err := ReverseName(ip)
		if err != nil {
			return err
		}

		var rev *Reverse
		for _, origin := range fwd.reverses {
			if properAncestor(owner, origin) {
				rev = t.zones[origin]
				break
			}
		}
		if rev == nil {
			log.Warningf("%s of %s (%s) is outside every reverse zone declared by %s",
				ip, rr.Header().Name, owner, fwd.origin)
			continue
		}

		rev.add(&dns.PTR{
			Hdr: dns.RR_Header{
				Name:   owner,
				Rrtype: dns.TypePTR,
				Class:  dns.ClassINET,
				Ttl:    rr.Header().Ttl,
			},
			Ptr: dns.CanonicalName(rr.Header().Name),
		})
		rev.ptrs++
	}

	return nil
}

// reparent deep-copies a record and rewrites its owner to the new origin. Used to
// transplant apex records from a forward zone to a reverse zone.
func reparent(rr dns.RR, origin string) dns.RR {
	c := dns.Copy(rr)
	c.Header().Name = origin

	return c
}

// properAncestor returns true if zone sits strictly above owner in the name
// hierarchy. Unlike the usual in-domain test, equality is not good enough: a PTR owner
// must fall below the apex.
func properAncestor(owner, zone string) bool {
	if dns.CanonicalName(owner) == dns.CanonicalName(zone) {
		return false
	}

	return dnsutil.InDomain(owner, zone)
}

// Reverse is one synthesized reverse zone: the apex records copied from the first
// contributing forward zone followed by PTR records in synthesis order.
type Reverse struct {
	origin  string
	records []dns.RR
	ptrs    int
}

func (t *Reverse) add(rr dns.RR) {
	t.records = append(t.records, rr)
}

// Origin returns the canonical apex name of the zone.
func (t *Reverse) Origin() string {
	return t.origin
}

// FileName returns the on-disk name for the zone: the origin with the trailing root
// label omitted.
func (t *Reverse) FileName() string {
	return dnsutil.ChompCanonicalName(t.origin)
}

// PTRCount returns the number of PTR records accumulated so far.
func (t *Reverse) PTRCount() int {
	return t.ptrs
}

// Text serializes the zone one record per line in accumulation order. Owner names are
// absolute so the text stands alone without an $ORIGIN line.
func (t *Reverse) Text() string {
	var b strings.Builder
	for _, rr := range t.records {
		b.WriteString(rr.String())
		b.WriteByte('\n')
	}

	return b.String()
}
