package main

import (
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"reliudp/netconn"
	"reliudp/pkg/logger"
	"reliudp/pkg/metrics"
	"reliudp/pkg/protocol"
)

const version = "0.1.0"

func main() {
	serverPort := pflag.Int("server-port", protocol.DefaultServerPort, "UDP port to listen on")
	acceptNew := pflag.Bool("accept-new", true, "accept handshakes from unknown clients")
	resend := pflag.Bool("resend", true, "retransmit timed-out unacknowledged packets")
	ignoreOOO := pflag.Bool("ignore-out-of-order", false, "drop out-of-order payloads instead of delivering them")
	metricsAddr := pflag.String("metrics-addr", "", "address to serve Prometheus metrics on, empty to disable")
	pflag.Parse()

	logger.Banner("reliudp server", version)

	if *metricsAddr != "" {
		go func() {
			logger.Info("metrics listening on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, metrics.Handler()); err != nil {
				logger.Error("metrics server exited: %v", err)
			}
		}()
	}

	cfg := netconn.DefaultConfig(netconn.RoleServer)
	cfg.ServerPort = *serverPort
	cfg.AcceptNewConns = *acceptNew
	cfg.ResendTimedOut = *resend
	cfg.IgnoreOutOfOrder = *ignoreOOO

	conn := netconn.New(cfg)
	defer conn.Close()

	conn.SetConnectedCallback(func(addr *net.UDPAddr) {
		logger.Info("peer connected: %s", addr)
	})
	conn.SetDisconnectedCallback(func(addr *net.UDPAddr) {
		logger.Info("peer disconnected: %s", addr)
	})
	conn.SetReceivedCallback(func(payload []byte, from *net.UDPAddr, outOfOrder, resent bool) {
		logger.Debug("received %d bytes from %s (out_of_order=%v resent=%v)", len(payload), from, outOfOrder, resent)
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Section("serving")
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			conn.Tick(now.Sub(last))
			last = now
		case <-sigCh:
			logger.Info("shutting down")
			return
		}
	}
}
