package layers

import (
	"bytes"
	"fmt"
	"net/netip"
)

// IPv4 flag bits, stored in the top three bits of the flags/fragment field.
const (
	FlagMoreFragments uint8 = 1 << 0
	FlagDontFragment  uint8 = 1 << 1
	FlagEvil          uint8 = 1 << 2
)

const (
	ipv4Version      = 4
	ipv4IHL          = 5
	IPv4HeaderLength = ipv4IHL * 4

	// DefaultTTL is the TTL used when IPv4Options come from DefaultIPv4Options.
	DefaultTTL = 64
)

// IPv4Options holds the optional IPv4 header fields.
type IPv4Options struct {
	TOS            uint8
	Flags          uint8
	FragmentOffset uint16
	TTL            uint8
	ID             uint16
	Checksum       uint16
	TotalLength    uint16
}

// DefaultIPv4Options returns TTL 64 with every other field zero.
func DefaultIPv4Options() IPv4Options {
	return IPv4Options{TTL: DefaultTTL}
}

// IPv4Layer is a 20 byte IPv4 header without options. The checksum is
// written as given; the sending stack is expected to fill it in.
type IPv4Layer struct {
	TOS            uint8
	Length         uint16 // total length, header included
	ID             uint16
	Flags          uint8
	FragmentOffset uint16
	TTL            uint8
	Protocol       uint8
	Checksum       uint16
	Src, Dst       [4]byte
}

// NewIPv4Layer validates the addresses and option widths and returns the layer.
func NewIPv4Layer(protocol uint8, src, dst string, opts IPv4Options) (*IPv4Layer, error) {
	srcIP, err := ParseIPv4(src)
	if err != nil {
		return nil, fmt.Errorf("source address: %w", err)
	}
	dstIP, err := ParseIPv4(dst)
	if err != nil {
		return nil, fmt.Errorf("destination address: %w", err)
	}
	l := &IPv4Layer{
		TOS:            opts.TOS,
		Length:         opts.TotalLength,
		ID:             opts.ID,
		Flags:          opts.Flags,
		FragmentOffset: opts.FragmentOffset,
		TTL:            opts.TTL,
		Protocol:       protocol,
		Checksum:       opts.Checksum,
		Src:            srcIP,
		Dst:            dstIP,
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *IPv4Layer) validate() error {
	if err := checkUint("flags", int(l.Flags), 3); err != nil {
		return err
	}
	return checkUint("fragment offset", int(l.FragmentOffset), 13)
}

func (l *IPv4Layer) SetLength(payloadLength int) error {
	total := IPv4HeaderLength + payloadLength
	if err := checkLength("ipv4 total length", total); err != nil {
		return err
	}
	l.Length = uint16(total)
	return nil
}

func (l *IPv4Layer) TotalLength() int {
	return int(l.Length)
}

func (l *IPv4Layer) PayloadLength() int {
	return int(l.Length) - IPv4HeaderLength
}

// HasChecksum is false: the kernel computes the IPv4 header checksum.
func (l *IPv4Layer) HasChecksum() bool {
	return false
}

func (l *IPv4Layer) SerializeTo(b *bytes.Buffer) error {
	if err := l.validate(); err != nil {
		return err
	}
	b.Grow(IPv4HeaderLength)
	b.WriteByte(ipv4Version<<4 | ipv4IHL)
	b.WriteByte(l.TOS)
	putUint16(b, l.Length)
	putUint16(b, l.ID)
	putUint16(b, l.flagsFragment())
	b.WriteByte(l.TTL)
	b.WriteByte(l.Protocol)
	putUint16(b, l.Checksum)
	b.Write(l.Src[:])
	b.Write(l.Dst[:])
	return nil
}

func (l *IPv4Layer) flagsFragment() uint16 {
	return uint16(l.Flags)<<13 | l.FragmentOffset
}

func (l *IPv4Layer) String() string {
	return fmt.Sprintf("IPv4 %s -> %s proto=%d len=%d", netip.AddrFrom4(l.Src), netip.AddrFrom4(l.Dst), l.Protocol, l.Length)
}
