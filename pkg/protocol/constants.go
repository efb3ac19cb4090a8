// Package protocol implements the wire format, sequence arithmetic, peer
// state, RTT estimation, congestion-mode control and retransmission scan
// for a reliable UDP connection layer. It has no knowledge of sockets; the
// netconn package drives it from actual received datagrams and a tick
// clock.
package protocol

import "time"

// HeaderSize is the fixed length of every datagram's header, in bytes:
// magic(4) + id|flags(4) + sequence(4) + ack(4) + ack bitfield(4).
const HeaderSize = 20

// ProtocolMagic is the default magic value stamped into every header.
// Overridable per connection manager instance, matching the original's
// build-time GDT_INTERNAL_NETWORK_CUSTOM_PROTOCOL_ID escape hatch.
const ProtocolMagic uint32 = 1357924680

// DefaultServerPort is the default UDP port a server binds to.
const DefaultServerPort = 12084

// SentHistoryCap bounds the number of PacketRecord entries tracked per
// peer for RTT lookup and retransmission.
const SentHistoryCap = 34

// PacketLostTimeout is how long an unacknowledged sent packet waits before
// it becomes eligible for a single retransmission.
const PacketLostTimeout = 1000 * time.Millisecond

// ConnectionTimeout is how long a peer may go without receiving anything
// before it is considered disconnected.
const ConnectionTimeout = 10000 * time.Millisecond

// ClientRetryInterval is how often an unconnected client resends its
// CONNECT handshake datagram.
const ClientRetryInterval = 5 * time.Second

// GoodRTTThreshold is the RTT at or below which a peer's RTT is "good".
const GoodRTTThreshold = 250 * time.Millisecond

// MaxDatagramSize bounds a single received UDP payload.
const MaxDatagramSize = 8192

// GoodModeSendInterval and BadModeSendInterval are the send cadences used
// while a peer is in good or bad congestion mode respectively.
const (
	GoodModeSendInterval = time.Second / 30
	BadModeSendInterval  = time.Second / 10
)

// idMask strips the top flag nibble off an id|flags word.
const idMask uint32 = 0x0FFFFFFF

// Flag bits occupy the top nibble of the id|flags header word.
const (
	FlagNone      uint32 = 0
	FlagConnect   uint32 = 0x80000000
	FlagPing      uint32 = 0x40000000
	FlagNoRecChk  uint32 = 0x20000000
	FlagResending uint32 = 0x10000000
)
