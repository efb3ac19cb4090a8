package protocol

import "time"

// ScanRetransmit walks the 32 sequences preceding ack against bitfield,
// the selective-ack the remote side just sent us. Bit k (MSB first, k =
// 0..31) confirms sequence ack-1-k. For every unconfirmed bit, if that
// sequence is still in our sent history, isn't ack-exempt, hasn't already
// been retried, and has been waiting at least PacketLostTimeout, its
// payload is re-queued once (header stripped, resending flagged) and the
// record is marked retried so it can never resend twice. No-op if
// resendEnabled is false.
func ScanRetransmit(p *PeerState, ack uint32, bitfield uint32, now time.Time, resendEnabled bool) int {
	if !resendEnabled {
		return 0
	}
	count := 0
	for k := uint32(0); k < 32; k++ {
		bit := uint32(1) << (31 - k)
		if bitfield&bit != 0 {
			continue
		}
		seq := ack - 1 - k
		rec := p.FindSent(seq)
		if rec == nil || rec.AckExempt || rec.Retried {
			continue
		}
		if now.Sub(rec.SentAt) < PacketLostTimeout {
			continue
		}
		resent := make([]byte, len(rec.Payload))
		copy(resent, rec.Payload)
		p.EnqueuePacket(QueuedPacket{Payload: resent, Resending: true})
		rec.Retried = true
		count++
	}
	return count
}
