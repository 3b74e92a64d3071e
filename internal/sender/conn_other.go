//go:build !linux

package sender

// Dial is not available on this platform.
func Dial() (Conn, error) {
	return nil, ErrUnsupportedPlatform
}
