// Package metrics exposes counters and gauges for a running Connection
// using VictoriaMetrics/metrics, the lightweight self-registering metrics
// library the closest domain sibling in the retrieval pack (the Titanfall
// matchmaking backend) uses for the same "long running game server"
// shape.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/VictoriaMetrics/metrics"
)

var (
	packetsSent       = metrics.NewCounter("reliudp_packets_sent_total")
	packetsReceived   = metrics.NewCounter("reliudp_packets_received_total")
	duplicatesDropped = metrics.NewCounter("reliudp_duplicates_dropped_total")
	retransmitted     = metrics.NewCounter("reliudp_packets_retransmitted_total")
	connectedPeers    = metrics.NewGauge("reliudp_connected_peers", nil)
)

// PacketSent increments the sent-packet counter.
func PacketSent() { packetsSent.Inc() }

// PacketReceived increments the received-packet counter.
func PacketReceived() { packetsReceived.Inc() }

// DuplicateDropped increments the dropped-duplicate counter.
func DuplicateDropped() { duplicatesDropped.Inc() }

// Retransmitted increments the retransmitted-packet counter.
func Retransmitted() { retransmitted.Inc() }

// SetConnectedPeers updates the connected-peers gauge.
func SetConnectedPeers(n int) {
	connectedPeers.Set(float64(n))
}

// PeerRTT returns a per-peer RTT gauge in milliseconds, creating it on
// first use. Peer gauges are named by id so a restarted peer with a new
// id doesn't inherit a stale series.
func PeerRTT(peerID uint32) *metrics.Gauge {
	return metrics.GetOrCreateGauge(fmt.Sprintf(`reliudp_peer_rtt_ms{peer="%d"}`, peerID), nil)
}

// PeerCadenceGood returns a per-peer gauge that's 1 while the peer's
// congestion mode is good and 0 while bad.
func PeerCadenceGood(peerID uint32) *metrics.Gauge {
	return metrics.GetOrCreateGauge(fmt.Sprintf(`reliudp_peer_mode_good{peer="%d"}`, peerID), nil)
}

// Handler returns the Prometheus-format HTTP handler callers mount on
// --metrics-addr.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})
}
