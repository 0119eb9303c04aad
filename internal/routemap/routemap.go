// Package routemap assigns a resolved scan target's addresses to the local
// interface each should be sent from. It is the Go counterpart of the
// reference source's network::interface::map_ips_to_interfaces.
package routemap

import (
	"context"
	"errors"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hollowpointer/mappr-sub000/internal/iface"
	"github.com/hollowpointer/mappr-sub000/internal/ipaddr"
)

// Mapping pairs an interface with the addresses that should be probed
// through it.
type Mapping struct {
	Interface iface.NetworkInterface
	Addresses *ipaddr.Collection
}

// routableInterfaces returns the interfaces eligible to originate traffic:
// up, non-loopback, and carrying at least one address. Unlike
// iface.IsViableLAN this does not require physicality or a MAC address —
// routing considers any interface the kernel could plausibly use, including
// VPN and point-to-point links.
func routableInterfaces() ([]iface.NetworkInterface, error) {
	all, err := iface.Enumerate()
	if err != nil {
		return nil, err
	}
	out := make([]iface.NetworkInterface, 0, len(all))
	for _, n := range all {
		if n.Up && !n.Loopback && len(n.Addrs) > 0 {
			out = append(out, n)
		}
	}
	return out, nil
}

// Map assigns every address in collection to the local interface it should
// be sent from. Ranges that fit entirely within one interface's subnet are
// kept intact; a range that straddles subnet boundaries is decomposed into
// singles, matching the reference implementation's range-first-then-singles
// strategy. Singles are resolved in parallel: first by direct subnet
// containment, then by asking the OS routing table which local address it
// would use to reach the target (a connected UDP socket to port 53, probed
// per address family).
func Map(ctx context.Context, collection *ipaddr.Collection) ([]Mapping, error) {
	interfaces, err := routableInterfaces()
	if err != nil {
		return nil, err
	}
	if len(interfaces) == 0 {
		return nil, errors.New("no routable interfaces available")
	}

	ipToIdx := make(map[string]int)
	for idx, n := range interfaces {
		for _, a := range n.Addrs {
			ipToIdx[a.IP.String()] = idx
		}
	}

	byIdx := make(map[int]*ipaddr.Collection)
	get := func(idx int) *ipaddr.Collection {
		c, ok := byIdx[idx]
		if !ok {
			c = ipaddr.New()
			byIdx[idx] = c
		}
		return c
	}

	var overflow []net.IP
	for _, r := range collection.Ranges {
		owner := -1
		for idx, n := range interfaces {
			if containsRange(n, r) {
				owner = idx
				break
			}
		}
		if owner >= 0 {
			get(owner).AddRange(r)
			continue
		}
		// The range crosses a subnet boundary (or matches no local subnet at
		// all); fall back to resolving each address individually.
		overflow = append(overflow, r.All()...)
	}

	singles := collection.Singles()
	singles = append(singles, overflow...)

	resolved, err := resolveSingles(ctx, interfaces, ipToIdx, singles)
	if err != nil {
		return nil, err
	}
	for idx, ip := range resolved {
		get(idx).AddSingle(ip)
	}

	out := make([]Mapping, 0, len(byIdx))
	for idx, c := range byIdx {
		out = append(out, Mapping{Interface: interfaces[idx], Addresses: c})
	}
	return out, nil
}

func containsRange(n iface.NetworkInterface, r ipaddr.Ipv4Range) bool {
	for _, a := range n.Addrs {
		if a.Net == nil || a.IP.To4() == nil {
			continue
		}
		if a.Net.Contains(r.Start) && a.Net.Contains(r.End) {
			return true
		}
	}
	return false
}

// findLocalIndex returns the index of the first interface that directly
// owns target's subnet, if any.
func findLocalIndex(interfaces []iface.NetworkInterface, target net.IP) (int, bool) {
	targetIsV4 := target.To4() != nil
	for idx, n := range interfaces {
		for _, a := range n.Addrs {
			if a.Net == nil {
				continue
			}
			addrIsV4 := a.IP.To4() != nil
			if addrIsV4 != targetIsV4 {
				continue
			}
			if a.Net.Contains(target) {
				return idx, true
			}
		}
	}
	return 0, false
}

type indexedAddr struct {
	idx int
	ip  net.IP
}

// resolveSingles resolves every address in targets to the interface index
// that should send to it, dropping any address that resolves to no locally
// known interface. Every target that needs a routing-table probe opens its
// own short-lived connected UDP socket; no probe socket is cached or reused
// across targets.
func resolveSingles(ctx context.Context, interfaces []iface.NetworkInterface, ipToIdx map[string]int, targets []net.IP) ([]indexedAddr, error) {
	var (
		mu  sync.Mutex
		out []indexedAddr
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, target := range targets {
		target := target
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if idx, ok := findLocalIndex(interfaces, target); ok {
				mu.Lock()
				out = append(out, indexedAddr{idx: idx, ip: target})
				mu.Unlock()
				return nil
			}

			source, ok := resolveRouteSourceIP(target)
			if !ok {
				return nil
			}
			idx, ok := ipToIdx[source.String()]
			if !ok {
				return nil
			}
			mu.Lock()
			out = append(out, indexedAddr{idx: idx, ip: target})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// resolveRouteSourceIP asks the kernel routing table which local address it
// would use to reach target, by connecting a UDP socket and reading back the
// address it bound. No packets are sent: UDP connect only resolves a route.
func resolveRouteSourceIP(target net.IP) (net.IP, bool) {
	network := "udp4"
	if target.To4() == nil {
		network = "udp6"
	}

	conn, err := net.Dial(network, net.JoinHostPort(target.String(), "53"))
	if err != nil {
		return nil, false
	}
	defer conn.Close()

	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return nil, false
	}
	return local.IP, true
}
