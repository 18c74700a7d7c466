package addr

import (
	"fmt"
)

// Add returns a new Value offset by n, which may be negative. The arithmetic is
// performed on the big-endian bytes with ripple carry so it works identically for both
// families. An error is returned if the result would leave the family's value range,
// in which case the returned Value is the zero Value.
func (t Value) Add(n int64) (Value, error) {
	r := t
	size := t.family.Size()

	if n >= 0 {
		carry := uint64(n)
		for ix := size - 1; ix >= 0 && carry > 0; ix-- {
			sum := uint64(r.octets[ix]) + carry&0xff
			r.octets[ix] = byte(sum)
			carry >>= 8
			carry += sum >> 8
		}
		if carry > 0 {
			return Value{}, fmt.Errorf("%s + %d overflows %s", t, n, t.family)
		}

		return r, nil
	}

	borrow := uint64(-n) // Two's complement gives the magnitude even for MinInt64
	for ix := size - 1; ix >= 0 && borrow > 0; ix-- {
		sub := borrow & 0xff
		borrow >>= 8
		have := uint64(r.octets[ix])
		if have < sub {
			have += 256
			borrow++
		}
		r.octets[ix] = byte(have - sub)
	}
	if borrow > 0 {
		return Value{}, fmt.Errorf("%s %d underflows %s", t, n, t.family)
	}

	return r, nil
}

// Diff returns t minus o as an unsigned count. An error is returned if the families
// differ, if o is numerically greater than t, or if the difference does not fit in a
// uint64. The last case can only arise with IPv6 and implies a nonsensically large
// range anyway.
func (t Value) Diff(o Value) (uint64, error) {
	if t.family != o.family {
		return 0, fmt.Errorf("cannot diff %s against %s", t.family, o.family)
	}

	size := t.family.Size()
	var diff [16]byte
	borrow := 0
	for ix := size - 1; ix >= 0; ix-- {
		d := int(t.octets[ix]) - int(o.octets[ix]) - borrow
		borrow = 0
		if d < 0 {
			d += 256
			borrow = 1
		}
		diff[ix] = byte(d)
	}
	if borrow > 0 {
		return 0, fmt.Errorf("%s is less than %s", t, o)
	}

	for ix := 0; ix < size-8; ix++ {
		if diff[ix] != 0 {
			return 0, fmt.Errorf("difference between %s and %s is too large", t, o)
		}
	}

	lo := size - 8
	if lo < 0 {
		lo = 0
	}
	var n uint64
	for ix := lo; ix < size; ix++ {
		n = n<<8 | uint64(diff[ix])
	}

	return n, nil
}
