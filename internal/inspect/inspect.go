// Package inspect decodes crafted packets back into header fields.
package inspect

import (
	"encoding/hex"
	"fmt"
	"io"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Summary holds the decoded fields of an IPv4/UDP packet.
type Summary struct {
	HasIPv4        bool
	Version        uint8
	IHL            uint8
	TOS            uint8
	TotalLength    uint16
	ID             uint16
	Flags          layers.IPv4Flag
	FragmentOffset uint16
	TTL            uint8
	Protocol       layers.IPProtocol
	Checksum       uint16
	SrcIP, DstIP   net.IP

	HasUDP      bool
	SrcPort     uint16
	DstPort     uint16
	UDPLength   uint16
	UDPChecksum uint16

	Payload []byte
}

// FirstLayer returns the layer a crafted packet starts with.
func FirstLayer(withIPv4 bool) gopacket.LayerType {
	if withIPv4 {
		return layers.LayerTypeIPv4
	}
	return layers.LayerTypeUDP
}

// Decode parses buf starting at first (IPv4 or UDP), followed by the
// application payload. A bare UDP header can begin with any byte, so the
// caller names the outermost layer.
func Decode(buf []byte, first gopacket.LayerType) (*Summary, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("empty packet")
	}
	if first != layers.LayerTypeIPv4 && first != layers.LayerTypeUDP {
		return nil, fmt.Errorf("unsupported first layer %s", first)
	}

	var (
		ip4     layers.IPv4
		udp     layers.UDP
		payload gopacket.Payload
		decoded = make([]gopacket.LayerType, 0, 3)
	)
	parser := gopacket.NewDecodingLayerParser(first, &ip4, &udp, &payload)
	parser.IgnoreUnsupported = true
	if err := parser.DecodeLayers(buf, &decoded); err != nil {
		return nil, fmt.Errorf("decode packet: %w", err)
	}

	s := &Summary{}
	for _, lt := range decoded {
		switch lt {
		case layers.LayerTypeIPv4:
			s.HasIPv4 = true
			s.Version = ip4.Version
			s.IHL = ip4.IHL
			s.TOS = ip4.TOS
			s.TotalLength = ip4.Length
			s.ID = ip4.Id
			s.Flags = ip4.Flags
			s.FragmentOffset = ip4.FragOffset
			s.TTL = ip4.TTL
			s.Protocol = ip4.Protocol
			s.Checksum = ip4.Checksum
			s.SrcIP = ip4.SrcIP
			s.DstIP = ip4.DstIP
		case layers.LayerTypeUDP:
			s.HasUDP = true
			s.SrcPort = uint16(udp.SrcPort)
			s.DstPort = uint16(udp.DstPort)
			s.UDPLength = udp.Length
			s.UDPChecksum = udp.Checksum
			s.Payload = udp.Payload
		case gopacket.LayerTypePayload:
			s.Payload = payload.Payload()
		}
	}
	return s, nil
}

// Print writes a human readable rendering of s.
func (s *Summary) Print(w io.Writer) {
	if s.HasIPv4 {
		fmt.Fprintf(w, "IPv4  %s -> %s\n", s.SrcIP, s.DstIP)
		fmt.Fprintf(w, "      version=%d ihl=%d tos=%d total_length=%d id=%d\n", s.Version, s.IHL, s.TOS, s.TotalLength, s.ID)
		fmt.Fprintf(w, "      flags=%s frag_offset=%d ttl=%d protocol=%s checksum=%#04x\n", s.Flags, s.FragmentOffset, s.TTL, s.Protocol, s.Checksum)
	}
	if s.HasUDP {
		fmt.Fprintf(w, "UDP   %d -> %d length=%d checksum=%#04x\n", s.SrcPort, s.DstPort, s.UDPLength, s.UDPChecksum)
	}
	fmt.Fprintf(w, "Data  %d bytes %q\n", len(s.Payload), s.Payload)
}

// Hexdump writes buf in `hexdump -C` layout.
func Hexdump(w io.Writer, buf []byte) error {
	d := hex.Dumper(w)
	if _, err := d.Write(buf); err != nil {
		return err
	}
	return d.Close()
}
