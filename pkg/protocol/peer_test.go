package protocol

import (
	"testing"
	"time"
)

func TestSentHistoryBounded(t *testing.T) {
	p := NewPeerState(1, nil, 0)
	base := time.Now()
	for i := 0; i < SentHistoryCap+10; i++ {
		p.RecordSent(&PacketRecord{Sequence: uint32(i), SentAt: base})
	}
	if len(p.SentHistory) != SentHistoryCap {
		t.Fatalf("len(SentHistory) = %d, want %d", len(p.SentHistory), SentHistoryCap)
	}
	// Newest entries survive, oldest are trimmed.
	if p.SentHistory[0].Sequence != uint32(SentHistoryCap+9) {
		t.Errorf("newest entry sequence = %d, want %d", p.SentHistory[0].Sequence, SentHistoryCap+9)
	}
	if p.FindSent(5) != nil {
		t.Errorf("expected sequence 5 to have been trimmed from history")
	}
}

func TestSendQueueFIFO(t *testing.T) {
	p := NewPeerState(1, nil, 0)
	p.Enqueue([]byte("a"))
	p.Enqueue([]byte("b"))
	p.Enqueue([]byte("c"))

	if got := string(p.DequeueOldest()); got != "a" {
		t.Errorf("first dequeue = %q, want %q", got, "a")
	}
	if got := string(p.DequeueOldest()); got != "b" {
		t.Errorf("second dequeue = %q, want %q", got, "b")
	}
	if got := string(p.DequeueOldest()); got != "c" {
		t.Errorf("third dequeue = %q, want %q", got, "c")
	}
	if p.DequeueOldest() != nil {
		t.Errorf("expected nil from an empty queue")
	}
}

func TestClearQueue(t *testing.T) {
	p := NewPeerState(1, nil, 0)
	p.Enqueue([]byte("a"))
	p.Enqueue([]byte("b"))
	p.ClearQueue()
	if p.QueueLen() != 0 {
		t.Errorf("QueueLen() = %d after ClearQueue, want 0", p.QueueLen())
	}
}
