// Package layers composes protocol layers into raw packet bytes.
//
// Layers are listed outermost first (for example IPv4, UDP, Payload).
// SerializeLayers fills in every length field from the inside out and then
// writes the layers front to back into a single buffer.
package layers

import "bytes"

// Layer is one protocol header or payload segment of a nested packet.
type Layer interface {
	// SetLength recomputes the layer's own length field from the length of
	// everything it encapsulates. Layers without a length field ignore it.
	SetLength(payloadLength int) error

	// TotalLength returns the layer's header plus everything it encapsulates.
	TotalLength() int

	// PayloadLength returns TotalLength minus the layer's own header.
	PayloadLength() int

	// HasChecksum reports whether the protocol carries a checksum that
	// depends on the payload. Nothing in this package computes it.
	HasChecksum() bool

	// SerializeTo appends the wire form of the layer to b.
	SerializeTo(b *bytes.Buffer) error
}
