package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"firestige.xyz/layercraft/internal/config"
	"firestige.xyz/layercraft/internal/inspect"
	"firestige.xyz/layercraft/internal/pcapfile"
)

var decodeCmd = &cobra.Command{
	Use:   "decode FILE",
	Short: "Decode packets from a raw or pcap file",
	Long: `Decode packets written by "craft --out" (raw bytes) or "craft --pcap".
Files ending in .pcap are read as pcap and always start at the IPv4 header.
Anything else is one raw packet; pass --no-ipv4 (or disable packet.ipv4 in the
config) when it was crafted without the IPv4 header.

Examples:
  layercraft decode packet.bin
  layercraft decode --no-ipv4 udp.bin
  layercraft decode packet.pcap`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecode(cfg, args[0], cmd.OutOrStdout())
	},
}

func runDecode(c *config.Config, path string, w io.Writer) error {
	var (
		pkts  [][]byte
		first = inspect.FirstLayer(c.Packet.IPv4.Enabled)
	)
	if strings.EqualFold(filepath.Ext(path), ".pcap") {
		var err error
		if pkts, err = pcapfile.ReadAll(path); err != nil {
			return err
		}
		first = inspect.FirstLayer(true)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		pkts = [][]byte{data}
	}

	for i, pkt := range pkts {
		s, err := inspect.Decode(pkt, first)
		if err != nil {
			return fmt.Errorf("packet %d: %w", i+1, err)
		}
		fmt.Fprintf(w, "# packet %d (%d bytes)\n", i+1, len(pkt))
		s.Print(w)
	}
	return nil
}
