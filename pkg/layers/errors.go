package layers

import "errors"

var (
	ErrAddressParse       = errors.New("malformed IPv4 address")
	ErrFieldOverflow      = errors.New("field value exceeds wire width")
	ErrLengthOverflow     = errors.New("length exceeds wire width")
	ErrEmptyLayerSequence = errors.New("no layers to serialize")
)
