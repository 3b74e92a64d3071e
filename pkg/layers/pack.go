package layers

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"net/netip"
)

// maxLength is the largest value a 16-bit length field can carry.
const maxLength = math.MaxUint16

// checkUint verifies that v fits in an unsigned field of the given bit width.
func checkUint(name string, v, bits int) error {
	if v < 0 || v > 1<<bits-1 {
		return fmt.Errorf("%s %d does not fit in %d bits: %w", name, v, bits, ErrFieldOverflow)
	}
	return nil
}

// checkLength verifies that a computed length fits a 16-bit length field.
func checkLength(name string, v int) error {
	if v < 0 || v > maxLength {
		return fmt.Errorf("%s %d out of range [0, %d]: %w", name, v, maxLength, ErrLengthOverflow)
	}
	return nil
}

func putUint16(b *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.Write(tmp[:])
}

// ParseIPv4 parses a dotted-decimal IPv4 address into network byte order.
func ParseIPv4(s string) ([4]byte, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is4() {
		return [4]byte{}, fmt.Errorf("%q: %w", s, ErrAddressParse)
	}
	return addr.As4(), nil
}
