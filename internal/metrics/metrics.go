// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsBuiltTotal counts composer runs by result (ok / error)
	PacketsBuiltTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "layercraft_packets_built_total",
			Help: "Total number of packets composed from layers",
		},
		[]string{"result"},
	)

	// PacketsSentTotal counts packets written to the raw socket
	PacketsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "layercraft_packets_sent_total",
			Help: "Total number of packets sent",
		},
		[]string{"destination"},
	)

	// BytesSentTotal counts bytes written to the raw socket
	BytesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "layercraft_bytes_sent_total",
			Help: "Total number of bytes sent",
		},
		[]string{"destination"},
	)

	// SendErrorsTotal counts failed sends
	SendErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "layercraft_send_errors_total",
			Help: "Total number of failed sends",
		},
		[]string{"destination"},
	)

	// PacketSizeBytes tracks the size of composed packets
	PacketSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "layercraft_packet_size_bytes",
			Help:    "Size of composed packets in bytes",
			Buckets: prometheus.ExponentialBuckets(32, 2, 12), // 32B to 64KB
		},
	)
)
