package addr

import (
	"strconv"
	"strings"
)

// Prefix is a network prefix in the usual address/length form. The length counts
// significant leading bits, so the family of the network address bounds it.
type Prefix struct {
	net    Value
	length int
}

// ParsePrefix converts "network/length" text into a Prefix. The network address is
// parsed with Parse so its family comes from its textual form, and the length must lie
// in [0, family bits]. Host bits below the prefix length are retained as given; they
// are ignored by Matches.
func ParsePrefix(s string) (Prefix, error) {
	var p Prefix
	netText, lenText, found := strings.Cut(s, "/")
	if !found {
		return p, formatErrf("prefix '%s' needs a /length", s)
	}

	v, err := Parse(netText)
	if err != nil {
		return p, err
	}

	length, err := strconv.Atoi(lenText)
	if err != nil {
		return p, formatErrf("prefix length '%s' is not a number", lenText)
	}
	if length < 0 || length > v.Family().Bits() {
		return p, formatErrf("prefix length /%d is out of range for %s",
			length, v.Family())
	}

	p.net = v
	p.length = length

	return p, nil
}

// Net returns the network address as given to ParsePrefix.
func (t Prefix) Net() Value {
	return t.net
}

// Length returns the prefix length in bits.
func (t Prefix) Length() int {
	return t.length
}

// Matches returns true if a is of the same family as the prefix and agrees with the
// network address on the top Length bits.
func (t Prefix) Matches(a Value) bool {
	if a.family != t.net.family {
		return false
	}

	full := t.length / 8
	for ix := 0; ix < full; ix++ {
		if a.octets[ix] != t.net.octets[ix] {
			return false
		}
	}

	rem := t.length % 8
	if rem == 0 {
		return true
	}
	mask := byte(0xff << (8 - rem))

	return a.octets[full]&mask == t.net.octets[full]&mask
}

func (t Prefix) String() string {
	return t.net.String() + "/" + strconv.Itoa(t.length)
}
