package netconn

import (
	"net"
	"time"

	"reliudp/pkg/metrics"
	"reliudp/pkg/protocol"
)

// drainReceives performs at most one non-blocking read per Tick, mirroring
// the original's single recvfrom call per update(): the socket is put in
// non-blocking mode for the instant of the call via a zero-wait read
// deadline, and an empty read (EWOULDBLOCK-equivalent) just means nothing
// arrived this tick.
func (c *Connection) drainReceives() {
	c.conn.SetReadDeadline(time.Now())
	buf := make([]byte, protocol.MaxDatagramSize+protocol.HeaderSize)
	n, addr, err := c.conn.ReadFromUDP(buf)
	if err != nil {
		return
	}
	data := make([]byte, n)
	copy(data, buf[:n])
	c.handleDatagram(data, addr)
}

func (c *Connection) handleDatagram(data []byte, addr *net.UDPAddr) {
	h, err := protocol.DecodeHeader(data, c.cfg.ProtocolMagic)
	if err != nil {
		return
	}
	payload := data[protocol.HeaderSize:]

	if c.cfg.Role == RoleServer {
		c.handleServerDatagram(h, payload, addr)
		return
	}
	c.handleClientDatagram(h, payload, addr)
}

func (c *Connection) handleServerDatagram(h protocol.Header, payload []byte, addr *net.UDPAddr) {
	id, known := c.addrs[addr.String()]

	if h.HasFlag(protocol.FlagConnect) {
		if !known {
			if !c.cfg.AcceptNewConns {
				return
			}
			p := c.registerPeer(c.generateID(), addr, 0)
			p.LastRecvAt = time.Now()
			p.TriggerSend = true
		}
		// An already-registered address sending CONNECT again matches none
		// of the classification's other cases (its id is always 0, so it
		// can't be an existing peer with a matching id) and is dropped.
		return
	}

	if !known {
		return // ErrUnknownPeer
	}
	p := c.peers[id]
	if h.ID != p.ID {
		return // ErrIdMismatch
	}
	c.processPeerDatagram(p, h, payload)
}

func (c *Connection) handleClientDatagram(h protocol.Header, payload []byte, addr *net.UDPAddr) {
	if !c.clientConnected {
		// Any valid reply from the server's port completes the handshake;
		// the server answers a CONNECT with an ordinary datagram.
		if c.clientServerAddr != nil && addr.Port != c.clientServerAddr.Port {
			return
		}
		if c.cfg.ClientBroadcast && c.clientServerAddr == nil {
			c.clientServerAddr = addr
		}
		c.clientID = h.ID
		p := c.registerPeer(h.ID, addr, 1) // CLIENT's local_seq starts at 1, SERVER's at 0.
		p.LastRecvAt = time.Now()
		c.clientConnected = true
		return
	}

	p := c.peers[c.clientID]
	if p == nil || addr.String() != p.Addr.String() || h.ID != p.ID {
		return
	}
	c.processPeerDatagram(p, h, payload)
}

// processPeerDatagram runs the shared receive path once a datagram has
// been matched to a registered peer: RTT update, retransmission scan,
// sequence acceptance and the application callback.
func (c *Connection) processPeerDatagram(p *protocol.PeerState, h protocol.Header, payload []byte) {
	now := time.Now()
	p.LastRecvAt = now

	protocol.UpdateRTT(p, h.Ack, now)
	metrics.PeerRTT(p.ID).Set(float64(p.RTT.Milliseconds()))
	if n := protocol.ScanRetransmit(p, h.Ack, h.AckBitfield, now, c.cfg.ResendTimedOut); n > 0 {
		for i := 0; i < n; i++ {
			metrics.Retransmitted()
		}
	}

	metrics.PacketReceived()
	if h.HasFlag(protocol.FlagPing) {
		p.TriggerSend = true
		return
	}

	res := p.AcceptSequence(h.Sequence)
	if res.Duplicate {
		metrics.DuplicateDropped()
		return
	}
	if res.OutOfOrder && c.cfg.IgnoreOutOfOrder {
		return
	}
	if len(payload) > 0 && c.onReceived != nil {
		c.onReceived(payload, p.Addr, res.OutOfOrder, h.HasFlag(protocol.FlagResending))
	}
}
