package protocol

import "time"

const (
	goodStreakWindow = 10 * time.Second
	minToggleBudget  = 1 * time.Second
	maxToggleBudget  = 60 * time.Second
)

// TickCongestion advances the congestion-mode state machine by dt and
// recomputes the peer's send cadence. It ports the original's toggle-timer
// block: a peer in good mode that develops bad RTT drops to bad mode, and
// if the good streak that just ended was short (<=10s) the promotion
// threshold doubles, making it harder to flap back to good; a peer that
// stays good for 10s straight halves the threshold back down. A peer in
// bad mode with good RTT sustained for mode_toggle_budget promotes back to
// good; one with bad RTT just keeps resetting its bad-streak clock.
func TickCongestion(p *PeerState, dt time.Duration) {
	p.SinceGoodEntered += dt
	p.SinceBadEntered += dt

	switch {
	case p.ModeGood && !p.RTTGood:
		if p.SinceGoodEntered <= goodStreakWindow {
			p.ModeToggleBudget *= 2
			if p.ModeToggleBudget > maxToggleBudget {
				p.ModeToggleBudget = maxToggleBudget
			}
		}
		p.ModeGood = false
		p.SinceGoodEntered = 0
		p.SinceBadEntered = 0

	case p.ModeGood:
		if p.SinceGoodEntered >= goodStreakWindow {
			p.ModeToggleBudget /= 2
			if p.ModeToggleBudget < minToggleBudget {
				p.ModeToggleBudget = minToggleBudget
			}
			p.SinceGoodEntered = 0
		}

	case !p.ModeGood && p.RTTGood:
		if p.SinceBadEntered >= p.ModeToggleBudget {
			p.ModeGood = true
			p.SinceGoodEntered = 0
			p.SinceBadEntered = 0
		}

	default: // bad mode, bad RTT
		p.SinceBadEntered = 0
	}

	p.SendTimer += dt
	cadence := BadModeSendInterval
	if p.ModeGood {
		cadence = GoodModeSendInterval
	}
	if p.SendTimer >= cadence {
		p.SendTimer -= cadence
		p.TriggerSend = true
	}
}
