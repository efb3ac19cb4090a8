package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"reliudp/netconn"
	"reliudp/pkg/logger"
	"reliudp/pkg/protocol"
)

const version = "0.1.0"

func main() {
	serverAddr := pflag.String("connect", "", "server address to connect to, e.g. 127.0.0.1:12084")
	clientPort := pflag.Int("client-port", 0, "local UDP port to bind, 0 for any")
	broadcast := pflag.Bool("broadcast", false, "broadcast the handshake instead of dialing a known address")
	pflag.Parse()

	logger.Banner("reliudp client", version)

	cfg := netconn.DefaultConfig(netconn.RoleClient)
	cfg.ClientPort = *clientPort
	cfg.ClientBroadcast = *broadcast

	conn := netconn.New(cfg)
	defer conn.Close()

	if *serverAddr != "" {
		addr, err := net.ResolveUDPAddr("udp4", *serverAddr)
		if err != nil {
			logger.Fatal("resolving %s: %v", *serverAddr, err)
		}
		conn.ConnectTo(addr)
	} else if !*broadcast {
		logger.Fatal("either --connect or --broadcast must be set")
	}

	conn.SetConnectedCallback(func(addr *net.UDPAddr) {
		logger.Success("connected to %s", addr)
	})
	conn.SetDisconnectedCallback(func(addr *net.UDPAddr) {
		logger.Warn("disconnected from %s", addr)
	})
	conn.SetReceivedCallback(func(payload []byte, from *net.UDPAddr, outOfOrder, resent bool) {
		logger.Debug("received %d bytes from %s", len(payload), from)
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			conn.Tick(now.Sub(last))
			last = now
			if conn.GetConnected() && conn.Rtt() > protocol.GoodRTTThreshold {
				logger.Warn("rtt degraded: %s", conn.Rtt())
			}
		case <-sigCh:
			logger.Info("shutting down")
			return
		}
	}
}
