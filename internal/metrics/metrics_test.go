package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(PacketsSentTotal.WithLabelValues("198.51.100.7"))
	PacketsSentTotal.WithLabelValues("198.51.100.7").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PacketsSentTotal.WithLabelValues("198.51.100.7")))
}

func TestServerStartStop(t *testing.T) {
	// Grab a free port.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	PacketsBuiltTotal.WithLabelValues("ok").Inc()

	s := NewServer(addr, "")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	var body []byte
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ = io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	assert.Contains(t, string(body), "layercraft_packets_built_total")
	assert.NoError(t, s.Stop(context.Background()))
}

func TestServerStopWithoutStart(t *testing.T) {
	s := NewServer(":0", "/m")
	assert.NoError(t, s.Stop(context.Background()))
}
