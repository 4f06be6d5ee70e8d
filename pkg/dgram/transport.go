package dgram

import (
	"fmt"
	"net"
)

// Transport is the datagram capability the server runs on: receive one
// datagram with its sender address, send bytes to an address. Any
// net.PacketConn (for example a *net.UDPConn) satisfies it.
type Transport interface {
	ReadFrom(p []byte) (n int, addr net.Addr, err error)
	WriteTo(p []byte, addr net.Addr) (n int, err error)
	LocalAddr() net.Addr
	Close() error
}

// Bind opens a UDP socket on addr and returns it as a Transport.
func Bind(addr string) (Transport, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	return conn, nil
}

// SendTo fires one datagram at addr from a short-lived throwaway socket. The
// send is best-effort: no reply is awaited and no retransmission happens.
func SendTo(addr string, payload []byte) error {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return fmt.Errorf("send to %s: %w", addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("send to %s: %w", addr, err)
	}
	return nil
}
