package protocol

import (
	"net"
	"time"
)

// PacketRecord is kept per sent datagram so the RTT estimator can match an
// incoming ack back to a send time, and so the retransmission engine can
// tell whether a given sequence has already been resent once.
type PacketRecord struct {
	Payload   []byte
	SentAt    time.Time
	Sequence  uint32
	Resending bool
	// AckExempt marks packets sent with the NO_REC_CHK flag (heartbeats):
	// they carry no application payload worth retransmitting.
	AckExempt bool
	// Retried is set once this record has produced a resend. The engine
	// never resends the same record twice.
	Retried bool
}

// QueuedPacket is an outbound payload waiting in a peer's SendQueue.
// Resending marks a payload the retransmission engine re-queued, so the
// sender can stamp the outgoing header's RESENDING flag.
type QueuedPacket struct {
	Payload   []byte
	Resending bool
}

// PeerState is everything this module tracks for one remote endpoint.
type PeerState struct {
	ID   uint32
	Addr *net.UDPAddr

	LocalSeq  uint32
	RemoteSeq uint32
	AckBits   uint32

	// SentHistory holds up to SentHistoryCap PacketRecords, newest first.
	SentHistory []*PacketRecord
	// SendQueue holds outbound payloads awaiting their turn to go out;
	// Enqueue pushes to the front, DequeueOldest pops from the back, so
	// the queue drains in FIFO order.
	SendQueue []QueuedPacket

	RTT     time.Duration
	RTTGood bool

	LastRecvAt time.Time
	LastSentAt time.Time

	TriggerSend bool
	SendTimer   time.Duration

	ModeGood         bool
	ModeToggleBudget time.Duration
	SinceGoodEntered time.Duration
	SinceBadEntered  time.Duration
}

// NewPeerState returns a fresh peer in good congestion mode with the
// default toggle budget, matching a newly registered connection.
func NewPeerState(id uint32, addr *net.UDPAddr, localSeq uint32) *PeerState {
	return &PeerState{
		ID:               id,
		Addr:             addr,
		LocalSeq:         localSeq,
		ModeGood:         true,
		ModeToggleBudget: 30 * time.Second,
		RTTGood:          true,
	}
}

// Enqueue appends payload to the front of the send queue as a fresh
// (non-resend) packet.
func (p *PeerState) Enqueue(payload []byte) {
	p.EnqueuePacket(QueuedPacket{Payload: payload})
}

// EnqueuePacket pushes a packet, resend or not, to the front of the queue.
func (p *PeerState) EnqueuePacket(pkt QueuedPacket) {
	p.SendQueue = append([]QueuedPacket{pkt}, p.SendQueue...)
}

// DequeueOldest removes and returns the oldest queued payload (the back of
// the queue), or nil if the queue is empty.
func (p *PeerState) DequeueOldest() []byte {
	pkt, ok := p.DequeueOldestPacket()
	if !ok {
		return nil
	}
	return pkt.Payload
}

// DequeueOldestPacket is DequeueOldest but preserves the Resending flag.
func (p *PeerState) DequeueOldestPacket() (QueuedPacket, bool) {
	n := len(p.SendQueue)
	if n == 0 {
		return QueuedPacket{}, false
	}
	pkt := p.SendQueue[n-1]
	p.SendQueue = p.SendQueue[:n-1]
	return pkt, true
}

// QueueLen reports how many payloads are waiting to be sent.
func (p *PeerState) QueueLen() int {
	return len(p.SendQueue)
}

// ClearQueue drops everything waiting to be sent.
func (p *PeerState) ClearQueue() {
	p.SendQueue = nil
}

// RecordSent pushes a new PacketRecord to the front of the sent history
// and trims the back until the history is back at or under
// SentHistoryCap.
func (p *PeerState) RecordSent(rec *PacketRecord) {
	p.SentHistory = append([]*PacketRecord{rec}, p.SentHistory...)
	if len(p.SentHistory) > SentHistoryCap {
		p.SentHistory = p.SentHistory[:SentHistoryCap]
	}
}

// FindSent returns the PacketRecord for sequence, or nil if it's fallen
// out of the bounded history.
func (p *PeerState) FindSent(sequence uint32) *PacketRecord {
	for _, rec := range p.SentHistory {
		if rec.Sequence == sequence {
			return rec
		}
	}
	return nil
}
