package protocol

import "time"

// UpdateRTT folds a newly-acknowledged sequence's round trip time into the
// peer's RTT estimate using an EWMA with gain 1/10: the estimate moves a
// tenth of the way toward the sample, whether the sample is above or below
// it, matching the original lookupRtt. No-op if ack doesn't match any
// record still in the sent history.
func UpdateRTT(p *PeerState, ack uint32, now time.Time) {
	rec := p.FindSent(ack)
	if rec == nil {
		return
	}
	sample := now.Sub(rec.SentAt)
	if sample > p.RTT {
		p.RTT += (sample - p.RTT) / 10
	} else {
		p.RTT -= (p.RTT - sample) / 10
	}
	p.RTTGood = p.RTT <= GoodRTTThreshold
}
