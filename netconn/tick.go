package netconn

import (
	"time"

	"reliudp/pkg/logger"
	"reliudp/pkg/metrics"
	"reliudp/pkg/protocol"
)

// Tick drives every time-based transition: congestion-mode advancement,
// per-peer timeout detection, scheduled sends and (for CLIENT role) the
// handshake retry timer. It must be called from a single goroutine; no
// other method on Connection mutates peer state concurrently with it.
func (c *Connection) Tick(dt time.Duration) {
	if !c.validState {
		if err := c.initialize(); err != nil {
			c.invalidAt += dt
			if c.invalidAt >= invalidNoticeInterval {
				c.invalidAt = 0
				logger.Warn("connection not initialized: %v", err)
			}
			return
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.peers {
		protocol.TickCongestion(p, dt)
		mode := 0.0
		if p.ModeGood {
			mode = 1.0
		}
		metrics.PeerCadenceGood(p.ID).Set(mode)
	}
	metrics.SetConnectedPeers(len(c.peers))

	c.drainReceives()

	switch c.cfg.Role {
	case RoleServer:
		c.tickServer(dt)
	case RoleClient:
		c.tickClient(dt)
	}
}

func (c *Connection) tickServer(dt time.Duration) {
	now := time.Now()
	for id, p := range c.peers {
		if now.Sub(p.LastRecvAt) >= protocol.ConnectionTimeout {
			c.unregisterPeer(id)
		}
	}
	for _, p := range c.peers {
		if p.TriggerSend {
			c.sendScheduled(p)
			p.TriggerSend = false
		}
	}
}

func (c *Connection) tickClient(dt time.Duration) {
	now := time.Now()

	if c.clientConnected {
		p := c.peers[c.clientID]
		if p != nil && now.Sub(p.LastRecvAt) >= protocol.ConnectionTimeout {
			c.unregisterPeer(c.clientID)
			c.clientConnected = false
		}
	}

	if !c.clientConnected {
		if !c.cfg.AcceptNewConns || c.clientServerAddr == nil && !c.cfg.ClientBroadcast {
			return
		}
		c.clientRetryTimer += dt
		if c.clientRetryTimer >= protocol.ClientRetryInterval {
			c.clientRetryTimer = 0
			c.sendHandshake()
		}
		return
	}

	if p := c.peers[c.clientID]; p != nil && p.TriggerSend {
		c.sendScheduled(p)
		p.TriggerSend = false
	}
}
