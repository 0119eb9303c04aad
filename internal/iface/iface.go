// Package iface enumerates local network interfaces and classifies them for
// LAN discovery: physical vs. virtual, wired vs. wireless, and viable vs.
// not. It is the Go counterpart of bg's ap.networkd device inventory
// (discover.go), generalized from Brightgate's fixed appliance topology to
// an arbitrary host's interface set.
package iface

import (
	"errors"
	"net"
	"sort"
	"strings"
)

// ViabilityError enumerates the reasons an interface is unsuitable for LAN
// discovery. The set is closed: every failure maps to exactly one of these.
var (
	ErrIsDown         = errors.New("interface is down")
	ErrNotPhysical    = errors.New("interface is not physical")
	ErrNoMacAddress   = errors.New("interface has no hardware address")
	ErrNotBroadcast   = errors.New("interface does not support broadcast")
	ErrIsPointToPoint = errors.New("interface is point-to-point")
	ErrNoValidLanIP   = errors.New("interface has no private ipv4 or link-local ipv6 address")
)

// Addr is one address bound to an interface, alongside its containing
// network (used for subnet containment checks elsewhere).
type Addr struct {
	IP  net.IP
	Net *net.IPNet
}

// NetworkInterface is the local, OS-agnostic view of a NIC the rest of the
// package operates on.
type NetworkInterface struct {
	Name         string
	Index        int
	HardwareAddr net.HardwareAddr
	Addrs        []Addr

	Up            bool
	Broadcast     bool
	Loopback      bool
	PointToPoint  bool
}

// Wired reports whether this interface looks like a wired link, i.e. it is
// physical and not wireless.
func (n NetworkInterface) Wired(p PhysicalityChecker) bool {
	return p.IsPhysical(n.Name) && !p.IsWireless(n.Name)
}

// HasPrivateIPv4 reports whether the interface owns a private IPv4 address.
func (n NetworkInterface) HasPrivateIPv4() bool {
	for _, a := range n.Addrs {
		if v4 := a.IP.To4(); v4 != nil && v4.IsPrivate() {
			return true
		}
	}
	return false
}

// HasLinkLocalIPv6 reports whether the interface owns an IPv6 link-local
// address.
func (n NetworkInterface) HasLinkLocalIPv6() bool {
	for _, a := range n.Addrs {
		if a.IP.To4() == nil && a.IP.IsLinkLocalUnicast() {
			return true
		}
	}
	return false
}

// FirstPrivateIPv4Net returns the first private IPv4 network bound to the
// interface, if any.
func (n NetworkInterface) FirstPrivateIPv4Net() *net.IPNet {
	for _, a := range n.Addrs {
		if v4 := a.IP.To4(); v4 != nil && v4.IsPrivate() {
			return a.Net
		}
	}
	return nil
}

// Enumerate returns every interface reported by the OS, translated into our
// representation.
func Enumerate() ([]NetworkInterface, error) {
	raw, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	out := make([]NetworkInterface, 0, len(raw))
	for _, ri := range raw {
		ni := NetworkInterface{
			Name:         ri.Name,
			Index:        ri.Index,
			HardwareAddr: ri.HardwareAddr,
			Up:           ri.Flags&net.FlagUp != 0,
			Broadcast:    ri.Flags&net.FlagBroadcast != 0,
			Loopback:     ri.Flags&net.FlagLoopback != 0,
			PointToPoint: ri.Flags&net.FlagPointToPoint != 0,
		}

		addrs, err := ri.Addrs()
		if err != nil {
			// An interface that vanished mid-enumeration (race with the OS)
			// is reported with no addresses rather than failing the whole
			// call.
			out = append(out, ni)
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ni.Addrs = append(ni.Addrs, Addr{IP: ipNet.IP, Net: ipNet})
		}
		out = append(out, ni)
	}
	return out, nil
}

// IsViableLAN applies the LAN-viability predicate in the exact order the
// reference implementation does: a loopback interface fails with
// ErrNotPhysical, matching the same bucket a non-physical interface would.
func IsViableLAN(n NetworkInterface, p PhysicalityChecker) error {
	if !n.Up {
		return ErrIsDown
	}
	if !p.IsPhysical(n.Name) {
		return ErrNotPhysical
	}
	if n.Loopback {
		return ErrNotPhysical
	}
	if n.HardwareAddr == nil || len(n.HardwareAddr) == 0 {
		return ErrNoMacAddress
	}
	if !n.Broadcast {
		return ErrNotBroadcast
	}
	if n.PointToPoint {
		return ErrIsPointToPoint
	}
	if !n.HasPrivateIPv4() && !n.HasLinkLocalIPv6() {
		return ErrNoValidLanIP
	}
	return nil
}

// SelectLAN picks the best LAN interface among candidates already known to
// be viable: the first wired one, or else the first candidate at all.
func SelectLAN(candidates []NetworkInterface, p PhysicalityChecker) (NetworkInterface, bool) {
	if len(candidates) == 0 {
		return NetworkInterface{}, false
	}
	for _, c := range candidates {
		if c.Wired(p) {
			return c, true
		}
	}
	return candidates[0], true
}

// GetLANNetwork enumerates interfaces, filters to the viable ones, selects
// the best LAN candidate, and returns its primary private IPv4 network.
func GetLANNetwork(p PhysicalityChecker) (*net.IPNet, error) {
	all, err := Enumerate()
	if err != nil {
		return nil, err
	}

	var viable []NetworkInterface
	for _, n := range all {
		if IsViableLAN(n, p) == nil {
			viable = append(viable, n)
		}
	}

	chosen, ok := SelectLAN(viable, p)
	if !ok {
		return nil, errors.New("no interfaces available for LAN discovery")
	}

	return chosen.FirstPrivateIPv4Net(), nil
}

// GetPrioritized returns up to limit interfaces that are up, non-loopback,
// and have at least one address, with names starting with "e" (the wired
// heuristic bg's own device inventory uses for its "eth"/"enx" naming)
// sorted first.
func GetPrioritized(limit int) ([]NetworkInterface, error) {
	all, err := Enumerate()
	if err != nil {
		return nil, err
	}

	var candidates []NetworkInterface
	for _, n := range all {
		if n.Up && !n.Loopback && len(n.Addrs) > 0 {
			candidates = append(candidates, n)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		iWired := strings.HasPrefix(candidates[i].Name, "e")
		jWired := strings.HasPrefix(candidates[j].Name, "e")
		return iWired && !jWired
	})

	if limit < len(candidates) {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
