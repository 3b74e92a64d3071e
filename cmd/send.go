package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/layercraft/internal/config"
	"firestige.xyz/layercraft/internal/metrics"
	"firestige.xyz/layercraft/internal/packet"
	"firestige.xyz/layercraft/internal/sender"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Build a packet once and send it repeatedly over a raw socket",
	Long: `Build the configured packet once and send the same bytes to the destination
every send.interval until send.count packets have been sent or the process is
interrupted (SIGINT, SIGTERM). Requires CAP_NET_RAW.

Examples:
  layercraft send                     # default packet, once per second, forever
  layercraft send -c packet.yml       # packet and loop settings from config`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		conn, err := sender.Dial()
		if err != nil {
			return err
		}
		return runSend(ctx, cfg, conn)
	},
}

func runSend(ctx context.Context, c *config.Config, conn sender.Conn) error {
	defer conn.Close()

	if !c.Packet.IPv4.Enabled {
		return fmt.Errorf("send requires the ipv4 layer")
	}

	pkt, err := packet.Build(c.Packet)
	if err != nil {
		return fmt.Errorf("failed to build packet: %w", err)
	}

	dst := net.ParseIP(c.Send.Destination)
	if dst == nil || dst.To4() == nil {
		return fmt.Errorf("invalid send.destination %q", c.Send.Destination)
	}

	if c.Metrics.Enabled {
		srv := metrics.NewServer(c.Metrics.Listen, c.Metrics.Path)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer srv.Stop(context.Background())
	}

	slog.Info("sending packet",
		"dst", dst.String(),
		"bytes", len(pkt),
		"interval", c.Send.Interval,
		"count", c.Send.Count)

	s := sender.New(conn, sender.Options{
		Interval: c.Send.Interval,
		Count:    c.Send.Count,
	})
	sent, err := s.Run(ctx, pkt, dst)
	if err != nil {
		return err
	}

	slog.Info("send finished", "sent", sent)
	return nil
}
