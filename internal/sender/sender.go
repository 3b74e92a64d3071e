// Package sender transmits a crafted packet over a raw IPv4 socket.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"firestige.xyz/layercraft/internal/metrics"
)

var ErrUnsupportedPlatform = errors.New("raw IPv4 sending is only supported on linux")

// Conn writes complete IPv4 packets, header included.
type Conn interface {
	WriteTo(pkt []byte, dst net.IP) error
	Close() error
}

// Options controls the send loop.
type Options struct {
	Interval time.Duration
	Count    int // 0 = until ctx is done
}

// Sender resends one packet on a fixed interval.
type Sender struct {
	conn Conn
	opts Options
}

func New(conn Conn, opts Options) *Sender {
	return &Sender{conn: conn, opts: opts}
}

// Run writes pkt to dst until Count attempts have been made or ctx is done.
// Individual send failures are logged and counted, not returned. The same
// buffer is reused for every attempt. It returns the number of packets
// successfully written.
func (s *Sender) Run(ctx context.Context, pkt []byte, dst net.IP) (int, error) {
	if len(pkt) == 0 {
		return 0, fmt.Errorf("nothing to send")
	}
	if dst.To4() == nil {
		return 0, fmt.Errorf("destination %v is not an IPv4 address", dst)
	}

	if s.opts.Interval <= 0 {
		return 0, fmt.Errorf("invalid interval %s: must be positive", s.opts.Interval)
	}

	label := dst.String()
	if ctx.Err() != nil {
		slog.Info("send loop stopped before first attempt", "dst", label)
		return 0, nil
	}

	sent := 0
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		if err := s.conn.WriteTo(pkt, dst); err != nil {
			metrics.SendErrorsTotal.WithLabelValues(label).Inc()
			slog.Warn("send failed", "dst", label, "attempt", attempt, "error", err)
		} else {
			sent++
			metrics.PacketsSentTotal.WithLabelValues(label).Inc()
			metrics.BytesSentTotal.WithLabelValues(label).Add(float64(len(pkt)))
			slog.Debug("packet sent", "dst", label, "bytes", len(pkt), "attempt", attempt)
		}

		if s.opts.Count > 0 && attempt >= s.opts.Count {
			return sent, nil
		}

		select {
		case <-ctx.Done():
			slog.Info("send loop stopped", "dst", label, "sent", sent)
			return sent, nil
		case <-ticker.C:
		}
	}
}
