package layers

import "bytes"

// Payload is opaque application data with no header.
type Payload []byte

// NewPayload wraps b. The slice is not copied.
func NewPayload(b []byte) *Payload {
	p := Payload(b)
	return &p
}

// SetLength is a no-op; a payload has no length field.
func (p *Payload) SetLength(int) error {
	return nil
}

func (p *Payload) TotalLength() int {
	return len(*p)
}

func (p *Payload) PayloadLength() int {
	return len(*p)
}

func (p *Payload) HasChecksum() bool {
	return false
}

func (p *Payload) SerializeTo(b *bytes.Buffer) error {
	b.Write(*p)
	return nil
}
