package layers

import (
	"bytes"
	"fmt"
)

// SerializeLayers fills in the length field of every layer from the inside
// out and returns the layers serialized outermost first. The innermost layer
// keeps its own length; each outer layer gets the total length of the layer
// directly inside it.
//
// Either the whole packet is returned or nil and an error. Checksums are
// written as currently set, regardless of HasChecksum.
//
// The layers are mutated. Callers must not share layer values between
// concurrent calls.
func SerializeLayers(ls ...Layer) ([]byte, error) {
	if len(ls) == 0 {
		return nil, ErrEmptyLayerSequence
	}

	last := len(ls) - 1
	cur := ls[last].TotalLength()
	for i := last - 1; i >= 0; i-- {
		if err := ls[i].SetLength(cur); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		cur = ls[i].TotalLength()
	}

	var buf bytes.Buffer
	if cur > 0 {
		buf.Grow(cur)
	}
	for i, l := range ls {
		if err := l.SerializeTo(&buf); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
