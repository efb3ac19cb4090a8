package protocol

import "errors"

// Sentinel errors for the classification taxonomy: some are silently
// dropped by the connection manager, others are surfaced to the operator.
var (
	// ErrInvalidHeader means the datagram was too short or carried the
	// wrong magic value. Silently dropped.
	ErrInvalidHeader = errors.New("protocol: invalid header")
	// ErrIdMismatch means the datagram's id did not match the peer
	// registered for its source address. Silently dropped.
	ErrIdMismatch = errors.New("protocol: id mismatch")
	// ErrUnknownPeer means the datagram's source address has no
	// registered peer and the datagram was not a CONNECT. Silently
	// dropped.
	ErrUnknownPeer = errors.New("protocol: unknown peer")
	// ErrDuplicate means the sequence number was already accounted for
	// in the peer's ack bitfield. Silently dropped.
	ErrDuplicate = errors.New("protocol: duplicate sequence")
	// ErrSocketSetupFailure means binding or configuring the underlying
	// UDP socket failed. Operator-visible.
	ErrSocketSetupFailure = errors.New("protocol: socket setup failure")
	// ErrSendFailure means a write to the underlying socket failed.
	// Operator-visible.
	ErrSendFailure = errors.New("protocol: send failure")
	// ErrQueueToUnknown means the caller tried to queue a payload for an
	// address with no registered peer.
	ErrQueueToUnknown = errors.New("protocol: queue to unknown peer")
)
