// Package resolver implements the hostname resolver: a single long-lived
// task that turns a stream of discovered addresses into PTR lookups and
// hands back a map of resolved hostnames. Grounded on
// core/src/scanner/resolver.rs's HostnameResolver.
package resolver

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	apnet "github.com/hollowpointer/mappr-sub000/ap_common/network"
	"github.com/hollowpointer/mappr-sub000/internal/protocols"
)

const (
	dnsPort         = 53
	mdnsPort        = 5353
	gracePeriod     = 200 * time.Millisecond
	resolvConfPath  = "/etc/resolv.conf"
	readLoopTimeout = 100 * time.Millisecond
)

// Resolver consumes a stream of IpAddress values and produces hostnames via
// PTR lookups, mirroring HostnameResolver's pending/hostname maps. One
// Resolver instance outlives every scanner in a discovery cycle.
type Resolver struct {
	conn4 *net.UDPConn
	conn6 *net.UDPConn
	log   *zap.SugaredLogger

	mu          sync.Mutex
	hostnameMap map[string]string
	pending     map[uint16]net.IP
	idCounter   uint16
}

// New opens the UDP sockets the resolver sends and receives PTR traffic on.
func New(log *zap.SugaredLogger) (*Resolver, error) {
	conn4, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, err
	}
	conn6, err := net.ListenUDP("udp6", &net.UDPAddr{})
	if err != nil {
		conn6 = nil // dual-stack is best-effort; IPv4 alone still works
	}

	return &Resolver{
		conn4:       conn4,
		conn6:       conn6,
		log:         log,
		hostnameMap: make(map[string]string),
		pending:     make(map[uint16]net.IP),
	}, nil
}

// Close releases the resolver's sockets.
func (r *Resolver) Close() {
	r.conn4.Close()
	if r.conn6 != nil {
		r.conn6.Close()
	}
}

// Run drains in until it is closed, then waits a short grace period for
// outstanding replies before returning the accumulated hostname map keyed
// by address string.
func (r *Resolver) Run(ctx context.Context, in <-chan net.IP) map[string]string {
	replies := r.startReadLoop(ctx)
	idleSince := time.Time{}

	for {
		select {
		case <-ctx.Done():
			return r.snapshot()

		case ip, ok := <-in:
			if !ok {
				in = nil
				idleSince = time.Now()
				continue
			}
			r.handleNewTarget(ip)

		case resp, ok := <-replies:
			if !ok {
				return r.snapshot()
			}
			r.handleReply(resp)

		case <-time.After(readLoopTimeout):
			if in == nil && !idleSince.IsZero() && time.Since(idleSince) >= gracePeriod {
				return r.snapshot()
			}
		}
	}
}

func (r *Resolver) snapshot() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.hostnameMap))
	for k, v := range r.hostnameMap {
		out[k] = v
	}
	return out
}

func (r *Resolver) handleNewTarget(ip net.IP) {
	r.mu.Lock()
	_, resolved := r.hostnameMap[ip.String()]
	alreadyPending := false
	for _, pendingIP := range r.pending {
		if pendingIP.Equal(ip) {
			alreadyPending = true
			break
		}
	}
	r.mu.Unlock()

	if resolved || alreadyPending {
		return
	}
	if !isQueryable(ip) {
		return
	}

	id := r.nextID()
	query, err := protocols.BuildPTRQuery(id, ip)
	if err != nil {
		if r.log != nil {
			r.log.Warnw("failed to build ptr query", "ip", ip, "error", err)
		}
		return
	}

	r.mu.Lock()
	r.pending[id] = ip
	r.mu.Unlock()

	server := resolverFor(ip, resolvConfPath)
	conn := r.conn4
	if server.To4() == nil {
		conn = r.conn6
	}
	if conn == nil {
		return
	}

	if _, err := conn.WriteToUDP(query, &net.UDPAddr{IP: server, Port: dnsPort}); err != nil && r.log != nil {
		r.log.Warnw("failed to send ptr query", "ip", ip, "error", err)
	}
}

func (r *Resolver) nextID() uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.idCounter
	r.idCounter++
	return id
}

// rawReply is a received UDP datagram alongside the port it arrived from.
type rawReply struct {
	data    []byte
	srcPort int
}

func (r *Resolver) startReadLoop(ctx context.Context) <-chan rawReply {
	out := make(chan rawReply, 64)

	read := func(conn *net.UDPConn) {
		if conn == nil {
			return
		}
		buf := make([]byte, 512)
		for {
			conn.SetReadDeadline(time.Now().Add(readLoopTimeout))
			n, addr, err := conn.ReadFromUDP(buf)
			select {
			case <-ctx.Done():
				return
			default:
			}
			if err != nil {
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					continue
				}
				return
			}
			data := append([]byte(nil), buf[:n]...)
			select {
			case out <- rawReply{data: data, srcPort: addr.Port}:
			default:
			}
		}
	}

	go read(r.conn4)
	go read(r.conn6)
	go func() {
		<-ctx.Done()
	}()

	return out
}

func (r *Resolver) handleReply(reply rawReply) {
	switch reply.srcPort {
	case dnsPort:
		id, hostname, err := protocols.ParsePTRResponse(reply.data)
		if err != nil {
			return
		}
		r.mu.Lock()
		ip, ok := r.pending[id]
		if ok {
			delete(r.pending, id)
			r.hostnameMap[ip.String()] = hostname
		}
		r.mu.Unlock()
	case mdnsPort:
		// mDNS is not implemented.
	}
}

// isQueryable reports whether ip is eligible for a PTR lookup: IPv4 always,
// IPv6 only when it is RFC 4291 global unicast (2000::/3) — other IPv6
// scopes (link-local, ULA, multicast) are skipped.
func isQueryable(ip net.IP) bool {
	if ip.To4() != nil {
		return true
	}
	return apnet.IsGlobalUnicastV6(ip)
}
