package netconn

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reliudp/pkg/protocol"
)

// pump ticks both connections repeatedly until condition returns true or
// timeout elapses, giving the loopback socket real wall-clock time to
// deliver datagrams between ticks.
func pump(t *testing.T, step time.Duration, timeout time.Duration, condition func() bool, ticks ...func(time.Duration)) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, tick := range ticks {
			tick(step)
		}
		if condition() {
			return
		}
		time.Sleep(step)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func newLoopbackServer(t *testing.T) *Connection {
	t.Helper()
	cfg := DefaultConfig(RoleServer)
	cfg.ServerPort = 0
	srv := New(cfg)
	t.Cleanup(func() { srv.Close() })
	srv.Tick(0) // force bind so LocalAddr is available
	require.NotNil(t, srv.LocalAddr(), "server failed to bind")
	return srv
}

func newLoopbackClient(t *testing.T, server *net.UDPAddr) *Connection {
	t.Helper()
	cfg := DefaultConfig(RoleClient)
	client := New(cfg)
	t.Cleanup(func() { client.Close() })
	client.ConnectTo(server)
	return client
}

func TestHandshakeConnectsBothSides(t *testing.T) {
	srv := newLoopbackServer(t)
	client := newLoopbackClient(t, srv.LocalAddr())

	var serverSawPeer, clientConnected bool
	srv.SetConnectedCallback(func(addr *net.UDPAddr) { serverSawPeer = true })
	client.SetConnectedCallback(func(addr *net.UDPAddr) { clientConnected = true })

	pump(t, 5*time.Millisecond, 2*time.Second, func() bool {
		return serverSawPeer && clientConnected
	}, srv.Tick, client.Tick)

	assert.True(t, srv.GetConnected())
	assert.True(t, client.GetConnected())
}

func TestSendAndReceivePayload(t *testing.T) {
	srv := newLoopbackServer(t)
	client := newLoopbackClient(t, srv.LocalAddr())

	pump(t, 5*time.Millisecond, 2*time.Second, func() bool {
		return srv.GetConnected() && client.GetConnected()
	}, srv.Tick, client.Tick)

	var received []byte
	srv.SetReceivedCallback(func(payload []byte, from *net.UDPAddr, outOfOrder, resent bool) {
		received = payload
	})

	peers := client.ConnectedPeers()
	require.Len(t, peers, 1)
	require.NoError(t, client.Send([]byte("hello"), peers[0]))

	pump(t, 5*time.Millisecond, 2*time.Second, func() bool {
		return received != nil
	}, srv.Tick, client.Tick)

	assert.Equal(t, "hello", string(received))
}

func TestSendToUnknownPeerFails(t *testing.T) {
	srv := newLoopbackServer(t)
	err := srv.Send([]byte("x"), &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9})
	assert.ErrorIs(t, err, protocol.ErrQueueToUnknown)
}

func TestBroadcastHandshakeConnects(t *testing.T) {
	srv := newLoopbackServer(t)

	cfg := DefaultConfig(RoleClient)
	cfg.ClientBroadcast = true
	cfg.ServerPort = srv.LocalAddr().Port
	client := New(cfg)
	t.Cleanup(func() { client.Close() })
	client.clientRetryTimer = protocol.ClientRetryInterval // send immediately, as ConnectTo does

	var serverSawPeer, clientConnected bool
	srv.SetConnectedCallback(func(addr *net.UDPAddr) { serverSawPeer = true })
	client.SetConnectedCallback(func(addr *net.UDPAddr) { clientConnected = true })

	pump(t, 5*time.Millisecond, 2*time.Second, func() bool {
		return serverSawPeer && clientConnected
	}, srv.Tick, client.Tick)

	assert.True(t, srv.GetConnected())
	assert.True(t, client.GetConnected())
}

func TestServerTimesOutStalePeer(t *testing.T) {
	srv := newLoopbackServer(t)
	client := newLoopbackClient(t, srv.LocalAddr())

	pump(t, 5*time.Millisecond, 2*time.Second, func() bool {
		return srv.GetConnected() && client.GetConnected()
	}, srv.Tick, client.Tick)

	var disconnected bool
	srv.SetDisconnectedCallback(func(addr *net.UDPAddr) { disconnected = true })

	srv.mu.Lock()
	for _, p := range srv.peers {
		p.LastRecvAt = time.Now().Add(-11 * time.Second)
	}
	srv.mu.Unlock()

	srv.Tick(10 * time.Millisecond)
	assert.True(t, disconnected)
	assert.False(t, srv.GetConnected())
}
