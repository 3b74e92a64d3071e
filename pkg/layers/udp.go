package layers

import (
	"bytes"
	"fmt"
)

// UDPHeaderLength is the fixed size of a UDP header.
const UDPHeaderLength = 8

// UDPOptions holds the optional UDP header fields.
type UDPOptions struct {
	Length   uint16
	Checksum uint16
}

// UDPLayer is an 8 byte UDP header. A zero checksum means "no checksum"
// over IPv4; whatever value is set is written verbatim.
type UDPLayer struct {
	SrcPort  uint16
	DstPort  uint16
	Length   uint16 // header plus payload
	Checksum uint16
}

// NewUDPLayer returns a UDP layer after checking that both ports fit in 16 bits.
func NewUDPLayer(srcPort, dstPort int, opts UDPOptions) (*UDPLayer, error) {
	if err := checkUint("source port", srcPort, 16); err != nil {
		return nil, err
	}
	if err := checkUint("destination port", dstPort, 16); err != nil {
		return nil, err
	}
	return &UDPLayer{
		SrcPort:  uint16(srcPort),
		DstPort:  uint16(dstPort),
		Length:   opts.Length,
		Checksum: opts.Checksum,
	}, nil
}

func (l *UDPLayer) SetLength(payloadLength int) error {
	total := UDPHeaderLength + payloadLength
	if err := checkLength("udp length", total); err != nil {
		return err
	}
	l.Length = uint16(total)
	return nil
}

func (l *UDPLayer) TotalLength() int {
	return int(l.Length)
}

func (l *UDPLayer) PayloadLength() int {
	return int(l.Length) - UDPHeaderLength
}

// HasChecksum is true, but the checksum field is never computed here.
func (l *UDPLayer) HasChecksum() bool {
	return true
}

func (l *UDPLayer) SerializeTo(b *bytes.Buffer) error {
	b.Grow(UDPHeaderLength)
	putUint16(b, l.SrcPort)
	putUint16(b, l.DstPort)
	putUint16(b, l.Length)
	putUint16(b, l.Checksum)
	return nil
}

func (l *UDPLayer) String() string {
	return fmt.Sprintf("UDP %d -> %d len=%d", l.SrcPort, l.DstPort, l.Length)
}
