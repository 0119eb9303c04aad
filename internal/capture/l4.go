package capture

import (
	"net"
	"sync"

	"golang.org/x/net/ipv4"
)

// Segment is one received L4 payload alongside the source address it
// arrived from.
type Segment struct {
	Payload []byte
	Source  net.IP
}

// L4Channel is a raw IPv4 transport endpoint (TCP or UDP) shared by every
// probe sent from one interface: one underlying raw socket, opened with
// IP_HDRINCL so the caller's own IPv4 header (built by internal/protocols)
// is transmitted unmodified.
type L4Channel struct {
	raw      *ipv4.RawConn
	conn     net.PacketConn
	protocol int

	segments chan Segment

	mu     sync.Mutex
	closed bool
}

// OpenL4 opens a raw IPv4 socket for protocol (syscall.IPPROTO_TCP or
// syscall.IPPROTO_UDP) and starts its background read loop. Raw IPv4
// sockets require CAP_NET_RAW/root; callers without that privilege use the
// non-privileged TCP-connect fallback instead (internal/scanner).
func OpenL4(protocol int) (*L4Channel, error) {
	conn, err := net.ListenPacket("ip4:"+protoName(protocol), "0.0.0.0")
	if err != nil {
		return nil, err
	}

	raw, err := ipv4.NewRawConn(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := raw.SetHeaderIncluded(true); err != nil {
		conn.Close()
		return nil, err
	}

	ch := &L4Channel{
		raw:      raw,
		conn:     conn,
		protocol: protocol,
		segments: make(chan Segment, queueDepth),
	}
	go ch.readLoop()
	return ch, nil
}

func protoName(protocol int) string {
	switch protocol {
	case 6:
		return "tcp"
	case 17:
		return "udp"
	default:
		return "ip"
	}
}

// Send transmits a fully-built raw IPv4 packet (IP header + L4 payload)
// synchronously.
func (c *L4Channel) Send(packet []byte) error {
	header, payload, err := splitIPv4Header(packet)
	if err != nil {
		return err
	}
	return c.raw.WriteTo(header, payload, nil)
}

// Segments returns the channel received (payload, source IP) pairs are
// published on.
func (c *L4Channel) Segments() <-chan Segment {
	return c.segments
}

func (c *L4Channel) readLoop() {
	defer close(c.segments)
	buf := make([]byte, 65536)
	for {
		header, payload, _, err := c.raw.ReadFrom(buf)
		if err != nil {
			if c.isClosed() {
				return
			}
			continue
		}

		seg := Segment{Payload: append([]byte(nil), payload...), Source: header.Src}

		select {
		case c.segments <- seg:
		default:
			select {
			case <-c.segments:
			default:
			}
			select {
			case c.segments <- seg:
			default:
			}
		}
	}
}

func (c *L4Channel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close stops the read loop and releases the underlying socket.
func (c *L4Channel) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.conn.Close()
}

func splitIPv4Header(packet []byte) (*ipv4.Header, []byte, error) {
	h, err := ipv4.ParseHeader(packet)
	if err != nil {
		return nil, nil, err
	}
	return h, packet[h.Len:], nil
}
