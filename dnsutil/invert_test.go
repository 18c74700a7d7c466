package dnsutil

import (
	"testing"
)

func TestReverseBlock(t *testing.T) {
	testCases := []struct{ input, expect string }{
		{"0.0.10.in-addr.arpa", "10.0.0.0/24"},
		{"0.0.10.in-addr.arpa.", "10.0.0.0/24"},
		{"10.in-addr.arpa", "10.0.0.0/8"},
		{"168.192.in-addr.arpa", "192.168.0.0/16"},
		{"4.3.2.1.in-addr.arpa", "1.2.3.4/32"},
		{"8.b.d.0.1.0.0.2.ip6.arpa", "2001:db8::/32"},
		{"8.B.D.0.1.0.0.2.ip6.arpa.", "2001:db8::/32"}, // Case and dot are canonicalized away
		{"1.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.ip6.arpa",
			"::1/128"},
		{"example.com", ""},
		{"in-addr.arpa", ""}, // No leading labels to decode
		{"ip6.arpa", ""},
		{"256.10.in-addr.arpa", ""},
		{"01.10.in-addr.arpa", ""},
		{"1.2.3.4.5.in-addr.arpa", ""},
		{"g.8.b.d.0.1.0.0.2.ip6.arpa", ""},
		{"dd.8.b.d.0.1.0.0.2.ip6.arpa", ""},
	}

	for ix, tc := range testCases {
		block, err := ReverseBlock(tc.input)
		if err != nil {
			if len(tc.expect) == 0 {
				continue
			}
			t.Error(ix, "Unexpected error with", tc.input, err)
			continue
		}
		if len(tc.expect) == 0 { // Expect error?
			t.Error(ix, "Expected error, got none with", tc.input, "and", block.String())
			continue
		}
		if block.String() != tc.expect {
			t.Error(ix, "Mismatch. Input:", tc.input, "got", block.String())
		}
	}
}

func TestConvertDecimalOctet(t *testing.T) {
	testCases := []struct {
		input  string
		expect int
	}{
		{"", -1},
		{"z", -1},
		{".255.", -1},
		{"zabc", -1},
		{"123", 123},
		{"0", 0},
		{"255", 255},
		{"256", -1},
		{"25x", -1},
		{"a25", -1},
		{"2a5", -1},
		{"001", -1},
	}

	for ix, tc := range testCases {
		ret := convertDecimalOctet(tc.input)
		if ret != tc.expect {
			t.Error(ix, "Input:", tc.input, "Expected:", tc.expect, "Got:", ret)
		}
	}
}
