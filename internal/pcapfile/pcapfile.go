// Package pcapfile records crafted packets to pcap files and reads them back.
//
// Files use LINKTYPE_RAW (packets start at the IPv4 header), so no link layer
// is invented for packets that never had one.
package pcapfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

const snapLen = 65535

// Writer appends packets to a pcap file.
type Writer struct {
	f *os.File
	w *pcapgo.Writer
}

// Create truncates path and writes the pcap file header.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create pcap file %s: %w", path, err)
	}
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(snapLen, layers.LinkTypeRaw); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write pcap header: %w", err)
	}
	return &Writer{f: f, w: w}, nil
}

// WritePacket records pkt with timestamp ts.
func (w *Writer) WritePacket(ts time.Time, pkt []byte) error {
	ci := gopacket.CaptureInfo{
		Timestamp:     ts,
		CaptureLength: len(pkt),
		Length:        len(pkt),
	}
	return w.w.WritePacket(ci, pkt)
}

func (w *Writer) Close() error {
	return w.f.Close()
}

// ReadAll returns every packet in the pcap file at path.
func ReadAll(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file %s: %w", path, err)
	}
	defer f.Close()

	r, err := pcapgo.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read pcap header: %w", err)
	}
	switch r.LinkType() {
	case layers.LinkTypeRaw, layers.LinkTypeIPv4:
	default:
		return nil, fmt.Errorf("unsupported link type %s", r.LinkType())
	}

	var pkts [][]byte
	for {
		data, _, err := r.ReadPacketData()
		if errors.Is(err, io.EOF) {
			return pkts, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read packet: %w", err)
		}
		pkts = append(pkts, data)
	}
}
