package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/layercraft/internal/config"
	"firestige.xyz/layercraft/internal/packet"
	"firestige.xyz/layercraft/pkg/layers"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the packet configuration",
	Long: `Validate the configuration and the packet it describes without sending anything.

Examples:
  layercraft validate -c packet.yml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cfg, cmd.OutOrStdout())
	},
}

func runValidate(c *config.Config, w io.Writer) error {
	ls, err := packet.Layers(c.Packet)
	if err != nil {
		fmt.Fprintf(w, "INVALID: %v\n", err)
		return err
	}
	pkt, err := layers.SerializeLayers(ls...)
	if err != nil {
		fmt.Fprintf(w, "INVALID: %v\n", err)
		return err
	}

	fmt.Fprintf(w, "VALID: %d layer(s), %d bytes\n", len(ls), len(pkt))
	return nil
}
