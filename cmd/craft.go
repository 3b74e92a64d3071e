package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"firestige.xyz/layercraft/internal/config"
	"firestige.xyz/layercraft/internal/inspect"
	"firestige.xyz/layercraft/internal/packet"
	"firestige.xyz/layercraft/internal/pcapfile"
)

var craftCmd = &cobra.Command{
	Use:   "craft",
	Short: "Build a packet and print it",
	Long: `Build the configured packet and print it as a hex dump.

Examples:
  layercraft craft                                  # default packet, hex dump
  layercraft craft --decode                         # print decoded header fields
  layercraft craft -c packet.yml -o packet.bin      # write raw bytes to a file
  layercraft craft --pcap packet.pcap               # record the packet for wireshark
  layercraft craft --dst 10.0.0.1 --dport 53 -p hi  # override fields`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCraft(cfg, craftOpts, cmd.OutOrStdout())
	},
}

type craftOptions struct {
	decode     bool
	out        string
	pcap       string
	showConfig bool
}

var craftOpts craftOptions

func init() {
	craftCmd.Flags().BoolVarP(&craftOpts.decode, "decode", "d", false, "print decoded header fields instead of a hex dump")
	craftCmd.Flags().StringVarP(&craftOpts.out, "out", "o", "", "write the raw packet to this file")
	craftCmd.Flags().StringVar(&craftOpts.pcap, "pcap", "", "write the packet to this pcap file (raw IP link type)")
	craftCmd.Flags().BoolVar(&craftOpts.showConfig, "show-config", false, "print the effective configuration first")
}

func runCraft(c *config.Config, opts craftOptions, w io.Writer) error {
	if opts.showConfig {
		out, err := c.Dump()
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		if _, err := w.Write(out); err != nil {
			return err
		}
	}

	if opts.pcap != "" && !c.Packet.IPv4.Enabled {
		return fmt.Errorf("pcap output needs the IPv4 header: raw link type files start at IPv4")
	}

	pkt, err := packet.Build(c.Packet)
	if err != nil {
		return fmt.Errorf("failed to build packet: %w", err)
	}

	if opts.out != "" {
		if err := os.WriteFile(opts.out, pkt, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.out, err)
		}
		slog.Info("packet written", "path", opts.out, "bytes", len(pkt))
	}

	if opts.pcap != "" {
		if err := writePcap(opts.pcap, pkt); err != nil {
			return err
		}
		slog.Info("packet recorded", "path", opts.pcap)
	}

	if !opts.decode {
		return inspect.Hexdump(w, pkt)
	}

	s, err := inspect.Decode(pkt, inspect.FirstLayer(c.Packet.IPv4.Enabled))
	if err != nil {
		return err
	}
	s.Print(w)
	return nil
}

func writePcap(path string, pkt []byte) error {
	w, err := pcapfile.Create(path)
	if err != nil {
		return err
	}
	if err := w.WritePacket(time.Now(), pkt); err != nil {
		w.Close()
		return fmt.Errorf("failed to write pcap packet: %w", err)
	}
	return w.Close()
}
