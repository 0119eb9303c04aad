// Package scanner implements the three on-the-wire discovery strategies —
// LAN (ARP/ICMPv6), Routed (half-open TCP), and a non-privileged TCP-connect
// fallback — behind one Scanner capability, grounded on
// core/src/scanner/{local,routed}.rs and core/src/network/tcp.rs.
package scanner

import (
	"context"
	"net"
)

// Host is a discovered peer. Internal (LAN-discovered) hosts carry a MAC
// and may accumulate several IPs; external (routed) hosts carry only the
// address that responded. A single struct serves both shapes — the
// reference implementation's InternalHost/ExternalHost split collapses
// here since Go favors one concrete type over a trait object for this
// capability (per the "tagged variant... is equivalent" design note).
type Host struct {
	MAC      net.HardwareAddr
	IPs      []net.IP
	Hostname string
	Vendor   string
}

// PrimaryIP returns the first IPv4 address if present, else the first
// address of any family, else nil.
func (h Host) PrimaryIP() net.IP {
	for _, ip := range h.IPs {
		if ip.To4() != nil {
			return ip
		}
	}
	if len(h.IPs) > 0 {
		return h.IPs[0]
	}
	return nil
}

// AddIP appends ip if not already present, reporting whether it was new.
func (h *Host) AddIP(ip net.IP) bool {
	for _, existing := range h.IPs {
		if existing.Equal(ip) {
			return false
		}
	}
	h.IPs = append(h.IPs, ip)
	return true
}

// Scanner is the uniform capability the orchestrator drives regardless of
// which on-the-wire strategy backs it.
type Scanner interface {
	Run(ctx context.Context) ([]Host, error)
}
