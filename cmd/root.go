// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/layercraft/internal/config"
	"firestige.xyz/layercraft/internal/log"
)

var (
	// Global flags
	configFile string

	// Packet overrides, applied only when set on the command line
	srcIP   string
	dstIP   string
	srcPort int
	dstPort int
	payload string
	ipFlags []string
	noIPv4  bool

	// cfg is loaded by PersistentPreRunE before any subcommand runs
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "layercraft",
	Short: "Craft and send raw IPv4/UDP packets",
	Long: `layercraft composes protocol layers (IPv4 header, UDP header, payload) into a
single raw packet. Length fields are filled in from the innermost layer outwards
before the layers are serialized, so the IPv4 total length and UDP length always
match the payload.

The IPv4 and UDP checksums are written as configured (default 0); the kernel
fills in the IPv4 header checksum when sending.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file path (defaults are used when empty)")
	pf.StringVar(&srcIP, "src", "", "IPv4 source address")
	pf.StringVar(&dstIP, "dst", "", "IPv4 destination address")
	pf.IntVar(&srcPort, "sport", 0, "UDP source port")
	pf.IntVar(&dstPort, "dport", 0, "UDP destination port")
	pf.StringVarP(&payload, "payload", "p", "", "payload text")
	pf.StringSliceVar(&ipFlags, "flags", nil, "IPv4 flags (DF, MF, EVIL)")
	pf.BoolVar(&noIPv4, "no-ipv4", false, "omit the IPv4 header")

	rootCmd.AddCommand(craftCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(decodeCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cmd, c)

	if err := log.Init(c.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	cfg = c
	return nil
}

// applyOverrides copies explicitly set packet flags over the loaded config.
func applyOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("src") {
		c.Packet.IPv4.Src = srcIP
	}
	if flags.Changed("dst") {
		// Keep send.destination in step when it was derived from the header.
		if c.Send.Destination == c.Packet.IPv4.Dst {
			c.Send.Destination = dstIP
		}
		c.Packet.IPv4.Dst = dstIP
	}
	if flags.Changed("sport") {
		c.Packet.UDP.SrcPort = srcPort
	}
	if flags.Changed("dport") {
		c.Packet.UDP.DstPort = dstPort
	}
	if flags.Changed("payload") {
		c.Packet.Payload = payload
		c.Packet.PayloadHex = ""
	}
	if flags.Changed("flags") {
		c.Packet.IPv4.Flags = ipFlags
	}
	if flags.Changed("no-ipv4") {
		c.Packet.IPv4.Enabled = !noIPv4
	}
}
