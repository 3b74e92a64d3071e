// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level configuration.
// Maps to the `layercraft:` root key in YAML.
type Config struct {
	Packet  PacketConfig  `mapstructure:"packet" yaml:"packet"`
	Send    SendConfig    `mapstructure:"send" yaml:"send"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ─── Packet ───

// PacketConfig describes the layers of the packet to craft, outermost first.
type PacketConfig struct {
	IPv4       IPv4Config `mapstructure:"ipv4" yaml:"ipv4"`
	UDP        UDPConfig  `mapstructure:"udp" yaml:"udp"`
	Payload    string     `mapstructure:"payload" yaml:"payload"`
	PayloadHex string     `mapstructure:"payload_hex" yaml:"payload_hex,omitempty"` // Takes precedence over payload
}

// IPv4Config contains IPv4 header fields. Widths are checked when the layer is built.
type IPv4Config struct {
	Enabled        bool     `mapstructure:"enabled" yaml:"enabled"`
	Protocol       int      `mapstructure:"protocol" yaml:"protocol"`
	Src            string   `mapstructure:"src" yaml:"src"`
	Dst            string   `mapstructure:"dst" yaml:"dst"`
	Flags          []string `mapstructure:"flags" yaml:"flags"` // DF | MF | EVIL, or a number 0-7
	FragmentOffset int      `mapstructure:"fragment_offset" yaml:"fragment_offset"`
	TTL            int      `mapstructure:"ttl" yaml:"ttl"`
	ID             int      `mapstructure:"id" yaml:"id"`
	TOS            int      `mapstructure:"tos" yaml:"tos"`
	Checksum       int      `mapstructure:"checksum" yaml:"checksum"`
}

// UDPConfig contains UDP header fields.
type UDPConfig struct {
	SrcPort  int `mapstructure:"src_port" yaml:"src_port"`
	DstPort  int `mapstructure:"dst_port" yaml:"dst_port"`
	Checksum int `mapstructure:"checksum" yaml:"checksum"` // 0 = no checksum
}

// ─── Send ───

// SendConfig controls the raw socket send loop.
type SendConfig struct {
	Destination string        `mapstructure:"destination" yaml:"destination"` // Empty = packet.ipv4.dst
	Interval    time.Duration `mapstructure:"interval" yaml:"interval"`
	Count       int           `mapstructure:"count" yaml:"count"` // 0 = until interrupted
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level" yaml:"level"`   // debug / info / warn / error
	Format  string           `mapstructure:"format" yaml:"format"` // json / text
	Outputs LogOutputsConfig `mapstructure:"outputs" yaml:"outputs"`
}

// LogOutputsConfig contains structured log output destinations.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file" yaml:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled" yaml:"enabled"`
	Path     string         `mapstructure:"path" yaml:"path"`
	Rotation RotationConfig `mapstructure:"rotation" yaml:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days" yaml:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups" yaml:"max_backups"`
	Compress   bool `mapstructure:"compress" yaml:"compress"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure `layercraft: ...`.
type configRoot struct {
	Layercraft Config `mapstructure:"layercraft" yaml:"layercraft"`
}

// Load loads configuration from file. An empty path loads defaults only.
// Env vars use the LAYERCRAFT_ prefix (e.g., LAYERCRAFT_LOG_LEVEL).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// key "layercraft.log.level" → env "LAYERCRAFT_LOG_LEVEL"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Layercraft

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
// The packet defaults describe a single UDP datagram 192.168.0.55:5995 → 192.168.0.100:9559.
func setDefaults(v *viper.Viper) {
	// Packet defaults
	v.SetDefault("layercraft.packet.ipv4.enabled", true)
	v.SetDefault("layercraft.packet.ipv4.protocol", 17)
	v.SetDefault("layercraft.packet.ipv4.src", "192.168.0.55")
	v.SetDefault("layercraft.packet.ipv4.dst", "192.168.0.100")
	v.SetDefault("layercraft.packet.ipv4.flags", []string{"DF"})
	v.SetDefault("layercraft.packet.ipv4.fragment_offset", 0)
	v.SetDefault("layercraft.packet.ipv4.ttl", 64)
	v.SetDefault("layercraft.packet.ipv4.id", 0)
	v.SetDefault("layercraft.packet.ipv4.tos", 0)
	v.SetDefault("layercraft.packet.ipv4.checksum", 0)
	v.SetDefault("layercraft.packet.udp.src_port", 5995)
	v.SetDefault("layercraft.packet.udp.dst_port", 9559)
	v.SetDefault("layercraft.packet.udp.checksum", 0)
	v.SetDefault("layercraft.packet.payload", "Hello World")
	v.SetDefault("layercraft.packet.payload_hex", "")

	// Send defaults
	v.SetDefault("layercraft.send.destination", "")
	v.SetDefault("layercraft.send.interval", "1s")
	v.SetDefault("layercraft.send.count", 0)

	// Log defaults
	v.SetDefault("layercraft.log.level", "info")
	v.SetDefault("layercraft.log.format", "text")
	v.SetDefault("layercraft.log.outputs.file.enabled", false)
	v.SetDefault("layercraft.log.outputs.file.path", "/var/log/layercraft/layercraft.log")
	v.SetDefault("layercraft.log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("layercraft.log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("layercraft.log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("layercraft.log.outputs.file.rotation.compress", true)

	// Metrics defaults
	v.SetDefault("layercraft.metrics.enabled", false)
	v.SetDefault("layercraft.metrics.listen", ":9091")
	v.SetDefault("layercraft.metrics.path", "/metrics")
}

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
// Header field widths are left to the layers package.
func (cfg *Config) ValidateAndApplyDefaults() error {
	// ── Log validation ──
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug/info/warn/error)", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json/text)", cfg.Log.Format)
	}

	// ── Send ──
	if cfg.Send.Interval <= 0 {
		return fmt.Errorf("invalid send.interval: %s (must be positive)", cfg.Send.Interval)
	}
	if cfg.Send.Count < 0 {
		return fmt.Errorf("invalid send.count: %d (must not be negative)", cfg.Send.Count)
	}
	if cfg.Send.Destination == "" {
		cfg.Send.Destination = cfg.Packet.IPv4.Dst
	}

	// ── Metrics ──
	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen is required when metrics.enabled=true")
	}

	return nil
}

// Dump renders the effective configuration as YAML under the `layercraft:` root key.
func (cfg *Config) Dump() ([]byte, error) {
	return yaml.Marshal(configRoot{Layercraft: *cfg})
}
