package multicast

import (
	"context"
	"fmt"
	"log"
	"net"

	"golang.org/x/net/ipv4"
)

// UDPSender sends datagrams to a multicast group from an ephemeral port.
type UDPSender struct {
	conn *net.UDPConn
	dst  *net.UDPAddr
}

// NewUDPSender opens a socket for sending to group ("host:port"). Loopback is
// enabled so listeners on the same host receive the datagrams.
func NewUDPSender(group string, ttl int) (*UDPSender, error) {
	dst, err := net.ResolveUDPAddr("udp4", group)
	if err != nil {
		return nil, fmt.Errorf("resolve group %q: %w", group, err)
	}
	if !dst.IP.IsMulticast() {
		return nil, fmt.Errorf("group %q is not a multicast address", group)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero})
	if err != nil {
		return nil, fmt.Errorf("open udp socket: %w", err)
	}

	pc := ipv4.NewPacketConn(conn)
	if err := pc.SetMulticastTTL(ttl); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set multicast ttl: %w", err)
	}
	if err := pc.SetMulticastLoopback(true); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set multicast loopback: %w", err)
	}

	return &UDPSender{conn: conn, dst: dst}, nil
}

// Send writes one datagram.
func (s *UDPSender) Send(payload []byte) error {
	if _, err := s.conn.WriteToUDP(payload, s.dst); err != nil {
		return fmt.Errorf("send datagram: %w", err)
	}
	return nil
}

// Close releases the socket.
func (s *UDPSender) Close() error {
	return s.conn.Close()
}

// Listener receives datagrams from a multicast group.
type Listener struct {
	conn net.PacketConn
	pc   *ipv4.PacketConn
}

// Listen joins group on ifi (nil selects the system default interface).
func Listen(group string, ifi *net.Interface) (*Listener, error) {
	addr, err := net.ResolveUDPAddr("udp4", group)
	if err != nil {
		return nil, fmt.Errorf("resolve group %q: %w", group, err)
	}
	if !addr.IP.IsMulticast() {
		return nil, fmt.Errorf("group %q is not a multicast address", group)
	}

	conn, err := net.ListenPacket("udp4", fmt.Sprintf("0.0.0.0:%d", addr.Port))
	if err != nil {
		return nil, fmt.Errorf("listen udp %d: %w", addr.Port, err)
	}

	pc := ipv4.NewPacketConn(conn)
	if err := pc.JoinGroup(ifi, &net.UDPAddr{IP: addr.IP}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join group %s: %w", addr.IP, err)
	}
	if err := pc.SetMulticastLoopback(true); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set multicast loopback: %w", err)
	}

	return &Listener{conn: conn, pc: pc}, nil
}

// Run delivers decoded datagrams to out until ctx is cancelled or the socket
// fails. Malformed datagrams are logged and dropped.
func (l *Listener) Run(ctx context.Context, out chan<- Datagram) error {
	stop := context.AfterFunc(ctx, func() { l.conn.Close() })
	defer stop()

	buf := make([]byte, maxDatagram)
	for {
		n, _, src, err := l.pc.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read datagram: %w", err)
		}

		d, err := ParseDatagram(buf[:n])
		if err != nil {
			log.Printf("multicast: dropping datagram from %v: %v", src, err)
			continue
		}

		select {
		case out <- d:
		case <-ctx.Done():
			return nil
		}
	}
}

// Close leaves the group and releases the socket.
func (l *Listener) Close() error {
	return l.conn.Close()
}
