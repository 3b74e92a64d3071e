package sender

import (
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
)

// ipprotoRaw opens the socket with IPPROTO_RAW, which implies IP_HDRINCL.
const ipprotoRaw = "ip4:255"

type rawConn struct {
	pc net.PacketConn
	rc *ipv4.RawConn
}

// Dial opens a raw IPv4 socket. It needs CAP_NET_RAW.
func Dial() (Conn, error) {
	pc, err := net.ListenPacket(ipprotoRaw, "0.0.0.0")
	if err != nil {
		return nil, fmt.Errorf("failed to open raw socket: %w", err)
	}
	rc, err := ipv4.NewRawConn(pc)
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("failed to enable header inclusion: %w", err)
	}
	return &rawConn{pc: pc, rc: rc}, nil
}

// WriteTo sends pkt verbatim; the kernel fills in the header checksum.
// pkt must start with an IPv4 header.
func (c *rawConn) WriteTo(pkt []byte, dst net.IP) error {
	if _, err := ipv4.ParseHeader(pkt); err != nil {
		return fmt.Errorf("invalid ipv4 header: %w", err)
	}
	_, err := c.pc.WriteTo(pkt, &net.IPAddr{IP: dst})
	return err
}

func (c *rawConn) Close() error {
	return c.rc.Close()
}
