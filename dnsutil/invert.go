package dnsutil

import (
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
)

// ReverseBlock converts a reverse-lookup zone name, usually truncated, into the address
// block whose PTR names fall under it. "0.0.10.in-addr.arpa" covers 10.0.0.0/24 and
// "8.b.d.0.1.0.0.2.ip6.arpa" covers 2001:db8::/32. An error is returned if the name is
// not under either reverse suffix or if its leading labels do not decode as address
// components.
func ReverseBlock(qName string) (*net.IPNet, error) {
	qName = dns.CanonicalName(qName)
	if strings.HasSuffix(qName, V4Suffix) {
		return reverseBlockV4(strings.TrimSuffix(qName, V4Suffix))
	}
	if strings.HasSuffix(qName, V6Suffix) {
		return reverseBlockV6(strings.TrimSuffix(qName, V6Suffix))
	}

	return nil, fmt.Errorf("'%s' is not under a reverse-lookup suffix", qName)
}

// reverseBlockV4 decodes the leading labels of an ipv4 reverse name. As a reminder, the
// name covering 10.0.0.0/24 is 0.0.10.in-addr.arpa, so labels arrive least significant
// first and every absent label widens the block by eight bits.
func reverseBlockV4(qName string) (*net.IPNet, error) {
	if len(qName) == 0 {
		return nil, fmt.Errorf("empty ipv4 reverse name")
	}
	var octets [4]byte
	reverse := strings.SplitN(qName, ".", 4)
	ix := 4 - len(reverse)
	for _, octet := range reverse {
		v := convertDecimalOctet(octet)
		if v == -1 {
			return nil, fmt.Errorf("'%s' is not a reversed ipv4 prefix", qName)
		}
		octets[ix] = byte(v)
		ix++
	}

	return &net.IPNet{
		IP:   net.IPv4(octets[3], octets[2], octets[1], octets[0]),
		Mask: net.CIDRMask(len(reverse)*8, 32),
	}, nil
}

// reverseBlockV6 decodes the leading labels of an ipv6 reverse name: one hex nibble per
// label, least significant first, so every label is worth four bits of prefix. Case is
// no concern since the name was canonicalized by the caller.
func reverseBlockV6(qName string) (*net.IPNet, error) {
	if len(qName) == 0 {
		return nil, fmt.Errorf("empty ipv6 reverse name")
	}
	var hex [32]byte
	reverse := strings.SplitN(qName, ".", 32)
	ix := 32 - len(reverse)
	for _, hStr := range reverse {
		if len(hStr) != 1 {
			return nil, fmt.Errorf("'%s' is not a reversed ipv6 prefix", qName)
		}
		h := hStr[0]
		switch {
		case h >= '0' && h <= '9':
			hex[ix] = h - '0'
		case h >= 'a' && h <= 'f':
			hex[ix] = h - 'a' + 10
		default:
			return nil, fmt.Errorf("'%s' is not a reversed ipv6 prefix", qName)
		}
		ix++
	}

	ip := make(net.IP, net.IPv6len)
	ox := 15
	for rx := 0; rx < 32; rx += 2 {
		ip[ox] = hex[rx+1]<<4 + hex[rx]
		ox--
	}

	return &net.IPNet{IP: ip, Mask: net.CIDRMask(len(reverse)*4, 128)}, nil
}

// convertDecimalOctet strictly converts an ipv4 decimal octet to an int. Return -1 if
// conversion fails. Rules: no leading zeroes, numeric range 0-255, length 1-3 bytes and
// no non-digit characters.
func convertDecimalOctet(s string) (ret int) {
	if len(s) == 0 || len(s) > 3 {
		return -1
	}
	if s[0] == '0' && len(s) > 1 { // Don't allow leading digits
		return -1
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			return -1
		}
		c -= '0'
		ret *= 10
		ret += int(c)
	}
	if ret > 255 {
		return -1
	}

	return
}
