package netconn

import (
	"fmt"
	"net"
	"time"

	"reliudp/pkg/logger"
	"reliudp/pkg/metrics"
	"reliudp/pkg/protocol"
)

// Send queues payload for delivery to addr. The peer must already be
// registered (via a completed handshake); queueing to an address with no
// matching peer returns ErrQueueToUnknown, matching the original's
// behavior of silently dropping a sendPacket call to an unrecognized
// address save for the logged warning.
func (c *Connection) Send(payload []byte, addr *net.UDPAddr) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.peerByAddrLocked(addr)
	if p == nil {
		return fmt.Errorf("%w: %s", protocol.ErrQueueToUnknown, addr)
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	p.Enqueue(cp)
	return nil
}

// sendScheduled is called once per peer whenever its congestion-mode
// cadence triggers a send. It pops the oldest queued payload, or
// synthesizes a NO_REC_CHK heartbeat when the queue is empty, exactly as
// the original's per-tick send branch does.
func (c *Connection) sendScheduled(p *protocol.PeerState) {
	pkt, ok := p.DequeueOldestPacket()
	ackExempt := !ok
	var payload []byte
	var flags uint32
	if ok {
		payload = pkt.Payload
		if pkt.Resending {
			flags = protocol.FlagResending
		}
	} else {
		flags = protocol.FlagNoRecChk
	}
	c.writeToPeer(p, flags, payload, ackExempt)
}

// writeToPeer stamps a header around payload and writes it to p's socket
// address, then records the send in the peer's history for RTT lookup and
// retransmission accounting. An ackExempt record (heartbeat) carries no
// payload and is never retransmitted.
func (c *Connection) writeToPeer(p *protocol.PeerState, flags uint32, payload []byte, ackExempt bool) error {
	seq := p.LocalSeq
	p.LocalSeq++

	h := protocol.Header{
		Magic:       c.cfg.ProtocolMagic,
		ID:          p.ID,
		Flags:       flags,
		Sequence:    seq,
		Ack:         p.RemoteSeq,
		AckBitfield: p.AckBits,
	}
	datagram := append(h.Encode(), payload...)

	if _, err := c.conn.WriteToUDP(datagram, p.Addr); err != nil {
		logger.Error("write to %s failed: %v", p.Addr, err)
		return fmt.Errorf("%w: %v", protocol.ErrSendFailure, err)
	}

	metrics.PacketSent()
	now := time.Now()
	p.LastSentAt = now
	p.RecordSent(&protocol.PacketRecord{
		Payload:   payload,
		SentAt:    now,
		Sequence:  seq,
		Resending: flags&protocol.FlagResending != 0,
		AckExempt: ackExempt,
	})
	return nil
}

// sendHandshake sends the minimal 20-byte CONNECT datagram a CLIENT uses
// to request registration: sequence 0, ack 0, ack bitfield all-ones
// (nothing received yet), matching the original's handshake packet.
func (c *Connection) sendHandshake() {
	dest := c.clientServerAddr
	if dest == nil {
		if !c.cfg.ClientBroadcast {
			return
		}
		dest = broadcastAddr(c.cfg.ServerPort)
	}

	h := protocol.Header{
		Magic:       c.cfg.ProtocolMagic,
		ID:          0,
		Flags:       protocol.FlagConnect,
		Sequence:    0,
		Ack:         0,
		AckBitfield: 0xFFFFFFFF,
	}
	if _, err := c.conn.WriteToUDP(h.Encode(), dest); err != nil {
		logger.Error("handshake send to %s failed: %v", dest, err)
	}
}

// ConnectTo points a CLIENT-role Connection at a specific server address,
// overriding broadcast discovery. Call before Tick starts driving the
// handshake, or at any point to redirect a not-yet-connected client.
func (c *Connection) ConnectTo(addr *net.UDPAddr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clientServerAddr = addr
	c.clientRetryTimer = protocol.ClientRetryInterval // send immediately on next tick
}
