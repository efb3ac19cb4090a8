package netconn

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"
	"reliudp/pkg/logger"
	"reliudp/pkg/protocol"
)

// invalidNoticeInterval matches the original's INVALID_NOTICE_TIME: how
// often a Connection in a permanently-invalid socket state logs a
// reminder instead of spamming every tick.
const invalidNoticeInterval = 5 * time.Second

// initialize lazily binds the UDP socket on the first Tick call. A failed
// bind leaves validState false, and Tick calls initialize again on every
// call until a bind succeeds; the bind attempts are not throttled, only
// the warning Tick logs is, to once per invalidNoticeInterval.
func (c *Connection) initialize() error {
	if c.validState {
		return nil
	}

	port := c.cfg.ClientPort
	if c.cfg.Role == RoleServer {
		port = c.cfg.ServerPort
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err != nil {
		logger.Error("socket bind on port %d failed: %v", port, err)
		return fmt.Errorf("%w: %v", protocol.ErrSocketSetupFailure, err)
	}

	if c.cfg.ClientBroadcast {
		if err := enableBroadcast(conn); err != nil {
			conn.Close()
			logger.Error("enabling SO_BROADCAST failed: %v", err)
			return fmt.Errorf("%w: %v", protocol.ErrSocketSetupFailure, err)
		}
	}

	c.conn = conn
	c.validState = true
	return nil
}

// enableBroadcast sets SO_BROADCAST on the UDP socket's underlying file
// descriptor. The standard library's net package has no portable way to
// express this option, so it's reached via SyscallConn + x/sys/unix, the
// same pattern used by tooling that inspects or tunes raw socket options
// past what net.Conn exposes.
func enableBroadcast(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// broadcastAddr returns the destination for a CLIENT's handshake datagram
// in broadcast mode: the subnet broadcast address of the first active,
// non-loopback IPv4 interface, falling back to the all-ones address
// 255.255.255.255 when no such interface or netmask can be found.
func broadcastAddr(port int) *net.UDPAddr {
	if ip := subnetBroadcastIP(); ip != nil {
		return &net.UDPAddr{IP: ip, Port: port}
	}
	return &net.UDPAddr{IP: net.IPv4bcast, Port: port}
}

// subnetBroadcastIP walks the host's network interfaces looking for an
// up, non-loopback IPv4 address with a usable netmask, and ORs the host
// bits on to produce that subnet's broadcast address.
func subnetBroadcastIP() net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipNet.IP.To4()
			if ip4 == nil || len(ipNet.Mask) != net.IPv4len {
				continue
			}
			bcast := make(net.IP, net.IPv4len)
			for i := range bcast {
				bcast[i] = ip4[i] | ^ipNet.Mask[i]
			}
			return bcast
		}
	}
	return nil
}
