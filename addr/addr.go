// Package addr provides a fixed-width representation of IPv4 and IPv6 addresses
// suitable for the byte-level arithmetic performed by the zone compiler. The standard
// library types are close but not quite right for this purpose: net.IP obscures the
// family of a parsed address behind its storage length, whereas here the family is an
// explicit tag decided by the textual form supplied by the zone author.
package addr

import (
	"fmt"
	"net"
	"strings"
)

// Family distinguishes IPv4 from IPv6 values. The zero value is invalid which means a
// zero Value is invalid too. Family carries the family-specific constants so callers
// never switch on magic lengths.
type Family int

const (
	V4 Family = iota + 1
	V6
)

// Size returns the number of significant bytes in an address of this family.
func (t Family) Size() int {
	if t == V4 {
		return 4
	}

	return 16
}

// Bits returns the number of significant bits in an address of this family.
func (t Family) Bits() int {
	return t.Size() * 8
}

// RRType returns the DNS address record type keyword for this family.
func (t Family) RRType() string {
	if t == V4 {
		return "A"
	}

	return "AAAA"
}

func (t Family) String() string {
	if t == V4 {
		return "IPv4"
	}

	return "IPv6"
}

// Value is an immutable address of a single family backed by big-endian bytes. The
// first Family.Size() bytes of the backing array are significant; the rest are always
// zero. Value is a comparable type so it can be used directly as a map key.
type Value struct {
	family Family
	octets [16]byte
}

// Parse converts address text into a Value. The family is decided solely by the
// presence of a colon, so "1.2.3.4" is IPv4 and anything with a colon in it is
// IPv6. Malformed text returns a FormatError.
func Parse(s string) (Value, error) {
	if strings.ContainsRune(s, ':') {
		return ParseFamily(V6, s)
	}

	return ParseFamily(V4, s)
}

// ParseFamily converts address text which the caller asserts to be of a particular
// family. Text of the other family returns a FormatError rather than being silently
// converted.
func ParseFamily(family Family, s string) (Value, error) {
	var v Value
	hasColon := strings.ContainsRune(s, ':')
	if family == V4 && hasColon {
		return v, formatErrf("'%s' is not an IPv4 address", s)
	}
	if family == V6 && !hasColon {
		return v, formatErrf("'%s' is not an IPv6 address", s)
	}

	ip := net.ParseIP(s)
	if ip == nil {
		return v, formatErrf("'%s' is not a valid %s address", s, family)
	}
	if family == V4 {
		ip = ip.To4()
	} else {
		ip = ip.To16()
	}
	if ip == nil { // Can't happen given the colon checks, but cheap to be sure
		return v, formatErrf("'%s' is not a valid %s address", s, family)
	}

	v.family = family
	copy(v.octets[:], ip)

	return v, nil
}

// FromBytes constructs a Value from big-endian bytes. The slice length must exactly
// match the family size.
func FromBytes(family Family, b []byte) (Value, error) {
	var v Value
	if len(b) != family.Size() {
		return v, formatErrf("%s address needs %d bytes, not %d",
			family, family.Size(), len(b))
	}

	v.family = family
	copy(v.octets[:], b)

	return v, nil
}

// Family returns the family tag. A zero Value returns the invalid zero Family.
func (t Value) Family() Family {
	return t.family
}

// Bytes returns a copy of the significant big-endian bytes.
func (t Value) Bytes() []byte {
	return append([]byte(nil), t.octets[:t.family.Size()]...)
}

// Octet returns the ix'th significant byte counting from the most significant at
// zero. It panics if ix is out of range, as a slice index would.
func (t Value) Octet(ix int) byte {
	if ix < 0 || ix >= t.family.Size() {
		panic(fmt.Sprintf("addr: octet index %d out of range for %s", ix, t.family))
	}

	return t.octets[ix]
}

// String returns the canonical text form: dotted-quad for IPv4 and compressed
// colon-hex for IPv6. An IPv4-mapped IPv6 value keeps its colon-hex form so the family
// remains visible in output; net.IP.String would render it as a bare dotted-quad.
func (t Value) String() string {
	if t.family == V4 {
		return fmt.Sprintf("%d.%d.%d.%d",
			t.octets[0], t.octets[1], t.octets[2], t.octets[3])
	}

	ip := net.IP(t.octets[0:16])
	if ip.To4() != nil {
		return fmt.Sprintf("::ffff:%d.%d.%d.%d",
			t.octets[12], t.octets[13], t.octets[14], t.octets[15])
	}

	return ip.String()
}
