package sender

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
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

var dst = net.IPv4(192, 168, 0, 100)

func TestRun_Count(t *testing.T) {
	pkt := []byte{0x45, 0x00}
	conn := new(MockConn)
	conn.On("WriteTo", pkt, dst).Return(nil).Times(3)

	s := New(conn, Options{Interval: time.Millisecond, Count: 3})
	sent, err := s.Run(context.Background(), pkt, dst)

	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	conn.AssertExpectations(t)
}

func TestRun_ErrorsAreBestEffort(t *testing.T) {
	pkt := []byte{0x45}
	conn := new(MockConn)
	conn.On("WriteTo", pkt, dst).Return(errors.New("network unreachable")).Once()
	conn.On("WriteTo", pkt, dst).Return(nil).Once()

	s := New(conn, Options{Interval: time.Millisecond, Count: 2})
	sent, err := s.Run(context.Background(), pkt, dst)

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	conn.AssertExpectations(t)
}

func TestRun_StopsOnCancel(t *testing.T) {
	pkt := []byte{0x45}
	conn := new(MockConn)
	conn.On("WriteTo", pkt, dst).Return(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := New(conn, Options{Interval: 5 * time.Millisecond})
	sent, err := s.Run(ctx, pkt, dst)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, sent, 1)
}

func TestRun_InvalidInput(t *testing.T) {
	conn := new(MockConn)
	s := New(conn, Options{Interval: time.Millisecond, Count: 1})

	_, err := s.Run(context.Background(), nil, dst)
	assert.Error(t, err)

	_, err = s.Run(context.Background(), []byte{1}, net.ParseIP("::1"))
	assert.Error(t, err)

	conn.AssertNotCalled(t, "WriteTo", mock.Anything, mock.Anything)
}

func TestRun_ZeroInterval(t *testing.T) {
	conn := new(MockConn)
	s := New(conn, Options{Count: 3})

	sent, err := s.Run(context.Background(), []byte{0x45}, dst)

	assert.Error(t, err)
	assert.Zero(t, sent)
	conn.AssertNotCalled(t, "WriteTo", mock.Anything, mock.Anything)
}

func TestRun_AlreadyCancelled(t *testing.T) {
	conn := new(MockConn)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(conn, Options{Interval: time.Millisecond, Count: 1})
	sent, err := s.Run(ctx, []byte{0x45}, dst)

	require.NoError(t, err)
	assert.Zero(t, sent)
	conn.AssertNotCalled(t, "WriteTo", mock.Anything, mock.Anything)
}
