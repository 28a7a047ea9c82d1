package anidb

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// maxDatagram is the largest untruncated reply the server sends.
const maxDatagram = 1400

// Transport performs one request/response exchange with the API endpoint.
// Implementations return the raw reply datagram or a network-level error.
type Transport interface {
	Exchange(ctx context.Context, payload []byte) ([]byte, error)
	Close() error
}

type udpTransport struct {
	conn    *net.UDPConn
	timeout time.Duration
}

// DialUDP opens the UDP socket used for all API traffic. AniDB ties sessions
// to the source port, so the local port is fixed rather than ephemeral.
func DialUDP(server string, port, localPort int, timeout time.Duration) (Transport, error) {
	remote, err := net.ResolveUDPAddr("udp", net.JoinHostPort(server, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("resolve %s:%d: %w", server, port, err)
	}
	local := &net.UDPAddr{Port: localPort}
	conn, err := net.DialUDP("udp", local, remote)
	if err != nil {
		return nil, fmt.Errorf("dial udp: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &udpTransport{conn: conn, timeout: timeout}, nil
}

func (t *udpTransport) Exchange(ctx context.Context, payload []byte) ([]byte, error) {
	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := t.conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	if _, err := t.conn.Write(payload); err != nil {
		return nil, fmt.Errorf("send datagram: %w", err)
	}

	buf := make([]byte, maxDatagram)
	n, err := t.conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("receive datagram: %w", err)
	}
	return buf[:n], nil
}

func (t *udpTransport) Close() error {
	return t.conn.Close()
}
