package protocol

import "testing"

func TestMoreRecentSimple(t *testing.T) {
	if !MoreRecent(5, 3) {
		t.Errorf("MoreRecent(5, 3) = false, want true")
	}
	if MoreRecent(3, 5) {
		t.Errorf("MoreRecent(3, 5) = true, want false")
	}
	if MoreRecent(5, 5) {
		t.Errorf("MoreRecent(5, 5) = true, want false (not strictly more recent)")
	}
}

func TestMoreRecentWraps(t *testing.T) {
	// 1 wrapped just past max uint32 is more recent than max uint32 itself.
	if !MoreRecent(1, 0xFFFFFFFF) {
		t.Errorf("MoreRecent(1, 0xFFFFFFFF) = false, want true")
	}
	if MoreRecent(0xFFFFFFFF, 1) {
		t.Errorf("MoreRecent(0xFFFFFFFF, 1) = true, want false")
	}
}

func TestMoreRecentTotality(t *testing.T) {
	// For any distinct a, b, exactly one of MoreRecent(a,b) / MoreRecent(b,a)
	// holds, including at the antipodal split point (half the space exactly),
	// where the numerically smaller value counts as more recent.
	samples := []uint32{0, 1, 2, 1 << 30, 1 << 31, (1 << 31) + 1, 0xFFFFFFFE, 0xFFFFFFFF}
	for _, a := range samples {
		for _, b := range samples {
			if a == b {
				continue
			}
			ab := MoreRecent(a, b)
			ba := MoreRecent(b, a)
			if ab && ba {
				t.Errorf("MoreRecent(%d,%d) and MoreRecent(%d,%d) both true", a, b, b, a)
			}
			if !ab && !ba {
				t.Errorf("MoreRecent(%d,%d) and MoreRecent(%d,%d) both false", a, b, b, a)
			}
		}
	}
}

func TestAcceptSequenceAdvancesAndShiftsBitfield(t *testing.T) {
	p := &PeerState{RemoteSeq: 10, AckBits: 0x00000001}
	res := p.AcceptSequence(12)
	if !res.Accepted || res.Duplicate {
		t.Fatalf("AcceptSequence(12) = %+v, want accepted", res)
	}
	if p.RemoteSeq != 12 {
		t.Errorf("RemoteSeq = %d, want 12", p.RemoteSeq)
	}
	// diff=2: old bitfield shifted right 2, new MSB set.
	want := (uint32(0x00000001) >> 2) | 0x80000000
	if p.AckBits != want {
		t.Errorf("AckBits = 0x%X, want 0x%X", p.AckBits, want)
	}
}

func TestAcceptSequenceDuplicateCurrent(t *testing.T) {
	p := &PeerState{RemoteSeq: 10}
	res := p.AcceptSequence(10)
	if !res.Duplicate || res.Accepted {
		t.Errorf("AcceptSequence(10) on RemoteSeq=10 = %+v, want duplicate", res)
	}
}

func TestAcceptSequenceOutOfOrderSetsBitOnce(t *testing.T) {
	p := &PeerState{RemoteSeq: 10, AckBits: 0}
	res := p.AcceptSequence(9) // diff=1, bit 31
	if !res.Accepted || !res.OutOfOrder {
		t.Fatalf("AcceptSequence(9) = %+v, want accepted out-of-order", res)
	}
	if p.AckBits != 0x80000000 {
		t.Errorf("AckBits = 0x%X, want 0x80000000", p.AckBits)
	}

	res2 := p.AcceptSequence(9)
	if !res2.Duplicate {
		t.Errorf("second AcceptSequence(9) = %+v, want duplicate", res2)
	}
}

func TestAcceptSequenceTooOldIsTreatedAsDuplicate(t *testing.T) {
	p := &PeerState{RemoteSeq: 1000}
	res := p.AcceptSequence(1000 - 33)
	if !res.Duplicate {
		t.Errorf("AcceptSequence 33 behind = %+v, want duplicate (outside bitfield window)", res)
	}
}
