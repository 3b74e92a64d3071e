// Package packet turns packet configuration into serialized layers.
package packet

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"firestige.xyz/layercraft/internal/config"
	"firestige.xyz/layercraft/internal/metrics"
	"firestige.xyz/layercraft/pkg/layers"
)

var flagNames = map[string]uint8{
	"df":             layers.FlagDontFragment,
	"dont_fragment":  layers.FlagDontFragment,
	"mf":             layers.FlagMoreFragments,
	"more_fragments": layers.FlagMoreFragments,
	"evil":           layers.FlagEvil,
	"evil_bit":       layers.FlagEvil,
}

// Layers builds the layer sequence described by cfg, outermost first:
// IPv4 (when enabled), UDP, Payload.
func Layers(cfg config.PacketConfig) ([]layers.Layer, error) {
	payload, err := payloadBytes(cfg)
	if err != nil {
		return nil, err
	}

	udp, err := layers.NewUDPLayer(cfg.UDP.SrcPort, cfg.UDP.DstPort, layers.UDPOptions{})
	if err != nil {
		return nil, fmt.Errorf("udp: %w", err)
	}
	if udp.Checksum, err = uint16Field("udp checksum", cfg.UDP.Checksum); err != nil {
		return nil, fmt.Errorf("udp: %w", err)
	}

	ls := []layers.Layer{udp, layers.NewPayload(payload)}
	if !cfg.IPv4.Enabled {
		return ls, nil
	}

	ip, err := ipv4Layer(cfg.IPv4)
	if err != nil {
		return nil, fmt.Errorf("ipv4: %w", err)
	}
	return append([]layers.Layer{ip}, ls...), nil
}

// Build composes the configured layers into packet bytes.
func Build(cfg config.PacketConfig) ([]byte, error) {
	ls, err := Layers(cfg)
	if err != nil {
		metrics.PacketsBuiltTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	pkt, err := layers.SerializeLayers(ls...)
	if err != nil {
		metrics.PacketsBuiltTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to serialize layers: %w", err)
	}

	metrics.PacketsBuiltTotal.WithLabelValues("ok").Inc()
	metrics.PacketSizeBytes.Observe(float64(len(pkt)))
	for _, l := range ls {
		if s, ok := l.(fmt.Stringer); ok {
			slog.Debug("layer", "desc", s.String(), "checksum", l.HasChecksum())
		}
	}
	slog.Debug("packet built", "layers", len(ls), "bytes", len(pkt))
	return pkt, nil
}

func ipv4Layer(c config.IPv4Config) (*layers.IPv4Layer, error) {
	opts := layers.DefaultIPv4Options()

	flags, err := ParseFlags(c.Flags)
	if err != nil {
		return nil, err
	}
	opts.Flags = flags

	protocol, err := uint8Field("protocol", c.Protocol)
	if err != nil {
		return nil, err
	}
	if opts.TTL, err = uint8Field("ttl", c.TTL); err != nil {
		return nil, err
	}
	if opts.TOS, err = uint8Field("tos", c.TOS); err != nil {
		return nil, err
	}
	if opts.ID, err = uint16Field("id", c.ID); err != nil {
		return nil, err
	}
	if opts.Checksum, err = uint16Field("checksum", c.Checksum); err != nil {
		return nil, err
	}
	if opts.FragmentOffset, err = uint16Field("fragment offset", c.FragmentOffset); err != nil {
		return nil, err
	}

	return layers.NewIPv4Layer(protocol, c.Src, c.Dst, opts)
}

// ParseFlags combines flag names (DF, MF, EVIL, case-insensitive) or
// numeric values into the 3-bit IPv4 flags value.
func ParseFlags(names []string) (uint8, error) {
	var flags uint8
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if f, ok := flagNames[name]; ok {
			flags |= f
			continue
		}
		n, err := strconv.ParseUint(name, 0, 8)
		if err != nil {
			return 0, fmt.Errorf("unknown ipv4 flag %q", name)
		}
		if n > 7 {
			return 0, fmt.Errorf("flags %d does not fit in 3 bits: %w", n, layers.ErrFieldOverflow)
		}
		flags |= uint8(n)
	}
	return flags, nil
}

func payloadBytes(cfg config.PacketConfig) ([]byte, error) {
	if cfg.PayloadHex == "" {
		return []byte(cfg.Payload), nil
	}
	b, err := hex.DecodeString(strings.Join(strings.Fields(cfg.PayloadHex), ""))
	if err != nil {
		return nil, fmt.Errorf("invalid payload_hex: %w", err)
	}
	return b, nil
}

func uint8Field(name string, v int) (uint8, error) {
	if v < 0 || v > 0xff {
		return 0, fmt.Errorf("%s %d does not fit in 8 bits: %w", name, v, layers.ErrFieldOverflow)
	}
	return uint8(v), nil
}

func uint16Field(name string, v int) (uint16, error) {
	if v < 0 || v > 0xffff {
		return 0, fmt.Errorf("%s %d does not fit in 16 bits: %w", name, v, layers.ErrFieldOverflow)
	}
	return uint16(v), nil
}
