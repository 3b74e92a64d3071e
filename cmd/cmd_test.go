package cmd

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"firestige.xyz/layercraft/internal/config"
	"firestige.xyz/layercraft/pkg/layers"
)

type MockConn struct {
	mock.Mock
}

func (m *MockConn) WriteTo(pkt []byte, dst net.IP) error {
	args := m.Called(pkt, dst)
	return args.Error(0)
}

func (m *MockConn) Close() error {
	args := m.Called()
	return args.Error(0)
}

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	c, err := config.Load("")
	require.NoError(t, err)
	return c
}

func TestRunCraft_Hexdump(t *testing.T) {
	var buf bytes.Buffer
	err := runCraft(defaultConfig(t), craftOptions{}, &buf)

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "45 00 00 27")
	assert.Contains(t, buf.String(), "Hell|")
	assert.Contains(t, buf.String(), "|o World|")
}

func TestRunCraft_Decode(t *testing.T) {
	var buf bytes.Buffer
	err := runCraft(defaultConfig(t), craftOptions{decode: true}, &buf)

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "192.168.0.55 -> 192.168.0.100")
	assert.Contains(t, buf.String(), "total_length=39")
	assert.Contains(t, buf.String(), "5995 -> 9559 length=19")
}

func TestRunCraft_WriteFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "packet.bin")

	var buf bytes.Buffer
	err := runCraft(defaultConfig(t), craftOptions{out: out}, &buf)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, data, 39)
}

func TestRunCraft_ShowConfig(t *testing.T) {
	var buf bytes.Buffer
	err := runCraft(defaultConfig(t), craftOptions{showConfig: true}, &buf)

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "layercraft:")
	assert.Contains(t, buf.String(), "dst_port: 9559")
}

func TestRunCraft_InvalidAddress(t *testing.T) {
	c := defaultConfig(t)
	c.Packet.IPv4.Src = "999.1.1.1"

	var buf bytes.Buffer
	err := runCraft(c, craftOptions{}, &buf)

	assert.ErrorIs(t, err, layers.ErrAddressParse)
	assert.Empty(t, buf.String())
}

func TestRunSend_Success(t *testing.T) {
	c := defaultConfig(t)
	c.Send.Count = 2
	c.Send.Interval = time.Millisecond

	conn := new(MockConn)
	conn.On("WriteTo", mock.MatchedBy(func(pkt []byte) bool { return len(pkt) == 39 }), mock.Anything).Return(nil).Twice()
	conn.On("Close").Return(nil).Once()

	err := runSend(context.Background(), c, conn)

	assert.NoError(t, err)
	conn.AssertExpectations(t)
}

func TestRunSend_BadDestination(t *testing.T) {
	c := defaultConfig(t)
	c.Send.Destination = "not-an-ip"

	conn := new(MockConn)
	conn.On("Close").Return(nil).Once()

	err := runSend(context.Background(), c, conn)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "send.destination")
	conn.AssertNotCalled(t, "WriteTo", mock.Anything, mock.Anything)
	conn.AssertExpectations(t)
}

func TestRunSend_RequiresIPv4(t *testing.T) {
	c := defaultConfig(t)
	c.Packet.IPv4.Enabled = false

	conn := new(MockConn)
	conn.On("Close").Return(errors.New("already closed")).Once()

	err := runSend(context.Background(), c, conn)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ipv4")
}

func TestRunValidate(t *testing.T) {
	var buf bytes.Buffer
	err := runValidate(defaultConfig(t), &buf)

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "VALID: 3 layer(s), 39 bytes")

	c := defaultConfig(t)
	c.Packet.UDP.SrcPort = 70000
	buf.Reset()
	err = runValidate(c, &buf)

	assert.ErrorIs(t, err, layers.ErrFieldOverflow)
	assert.Contains(t, buf.String(), "INVALID")
}

func TestApplyOverrides(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	require.NoError(t, cmd.Flags().Parse([]string{"--dst", "10.9.8.7", "--dport", "53", "--payload", "hi", "--flags", "MF,EVIL"}))

	c := defaultConfig(t)
	applyOverrides(cmd, c)

	assert.Equal(t, "10.9.8.7", c.Packet.IPv4.Dst)
	assert.Equal(t, "10.9.8.7", c.Send.Destination)
	assert.Equal(t, 53, c.Packet.UDP.DstPort)
	assert.Equal(t, 5995, c.Packet.UDP.SrcPort)
	assert.Equal(t, "hi", c.Packet.Payload)
	assert.Equal(t, []string{"MF", "EVIL"}, c.Packet.IPv4.Flags)
	assert.True(t, c.Packet.IPv4.Enabled)
}

func TestRunDecode_Pcap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packet.pcap")

	var buf bytes.Buffer
	require.NoError(t, runCraft(defaultConfig(t), craftOptions{pcap: path}, &buf))

	buf.Reset()
	err := runDecode(defaultConfig(t), path, &buf)

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "# packet 1 (39 bytes)")
	assert.Contains(t, buf.String(), `"Hello World"`)
}

func TestRunDecode_Raw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packet.bin")

	var buf bytes.Buffer
	require.NoError(t, runCraft(defaultConfig(t), craftOptions{out: path}, &buf))

	buf.Reset()
	err := runDecode(defaultConfig(t), path, &buf)

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "5995 -> 9559 length=19")
}

func TestRunDecode_Missing(t *testing.T) {
	var buf bytes.Buffer
	err := runDecode(defaultConfig(t), filepath.Join(t.TempDir(), "missing.bin"), &buf)
	assert.Error(t, err)
}

func bareUDPConfig(t *testing.T) *config.Config {
	t.Helper()
	c := defaultConfig(t)
	c.Packet.IPv4.Enabled = false
	c.Packet.UDP.SrcPort = 17000
	c.Packet.UDP.DstPort = 53
	c.Packet.Payload = "hi"
	return c
}

func TestRunCraft_DecodeBareUDP(t *testing.T) {
	var buf bytes.Buffer
	err := runCraft(bareUDPConfig(t), craftOptions{decode: true}, &buf)

	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "IPv4")
	assert.Contains(t, buf.String(), "17000 -> 53 length=10")
	assert.Contains(t, buf.String(), `"hi"`)
}

func TestRunCraft_PcapNeedsIPv4(t *testing.T) {
	path := filepath.Join(t.TempDir(), "udp.pcap")

	var buf bytes.Buffer
	err := runCraft(bareUDPConfig(t), craftOptions{pcap: path}, &buf)

	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestRunDecode_RawBareUDP(t *testing.T) {
	c := bareUDPConfig(t)
	path := filepath.Join(t.TempDir(), "udp.bin")

	var buf bytes.Buffer
	require.NoError(t, runCraft(c, craftOptions{out: path}, &buf))

	buf.Reset()
	err := runDecode(c, path, &buf)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "# packet 1 (10 bytes)")
	assert.Contains(t, buf.String(), "17000 -> 53 length=10")
}

func TestRunValidate_PayloadTooLong(t *testing.T) {
	c := defaultConfig(t)
	c.Packet.Payload = strings.Repeat("x", 65535-20-8+1)

	var buf bytes.Buffer
	err := runValidate(c, &buf)

	assert.ErrorIs(t, err, layers.ErrLengthOverflow)
	assert.Contains(t, buf.String(), "INVALID")
}

func TestRootSubcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"craft", "decode", "send", "validate"})
}
