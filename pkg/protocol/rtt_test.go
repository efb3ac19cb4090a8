package protocol

import (
	"testing"
	"time"
)

func TestUpdateRTTMovesTowardSample(t *testing.T) {
	p := NewPeerState(1, nil, 0)
	start := time.Now()
	p.RecordSent(&PacketRecord{Sequence: 5, SentAt: start})

	UpdateRTT(p, 5, start.Add(100*time.Millisecond))
	if p.RTT <= 0 {
		t.Fatalf("RTT = %v after first sample, want > 0", p.RTT)
	}
	if !p.RTTGood {
		t.Errorf("RTTGood = false for a 100ms first sample, want true")
	}
}

func TestUpdateRTTIgnoresUnknownAck(t *testing.T) {
	p := NewPeerState(1, nil, 0)
	p.RTT = 50 * time.Millisecond
	UpdateRTT(p, 999, time.Now())
	if p.RTT != 50*time.Millisecond {
		t.Errorf("RTT changed to %v on an unmatched ack, want unchanged", p.RTT)
	}
}

func TestUpdateRTTMarksBadAboveThreshold(t *testing.T) {
	p := NewPeerState(1, nil, 0)
	start := time.Now()
	p.RTT = GoodRTTThreshold
	p.RecordSent(&PacketRecord{Sequence: 1, SentAt: start})
	// 250ms + (400ms-250ms)/10 = 265ms, above the threshold.
	UpdateRTT(p, 1, start.Add(400*time.Millisecond))
	if p.RTTGood {
		t.Errorf("RTTGood = true for RTT %v, want false", p.RTT)
	}
}
