package target

import (
	"errors"
	"fmt"
	"net"

	"github.com/hollowpointer/mappr-sub000/internal/ipaddr"
	"github.com/hollowpointer/mappr-sub000/internal/iface"
)

// ErrVPNUnimplemented is returned when a VPN target is resolved; the VPN
// target keyword parses successfully but resolution is not implemented.
var ErrVPNUnimplemented = errors.New("vpn scan target not yet implemented")

// Resolution is the output of resolving a Target into addresses to probe.
// IsLANScan replaces the reference implementation's process-wide
// IS_LAN_SCAN atomic: instead of a global flag read by the LAN scanner,
// resolution reports explicitly whether any LAN keyword was present so the
// caller can thread it into the scanner's LANConfig.
type Resolution struct {
	Collection *ipaddr.Collection
	IsLANScan  bool
}

// ToCollection recursively evaluates t into an IpCollection. A LAN target
// resolves C2's chosen interface into its usable address range, excluding
// the network and broadcast addresses; if the network is too small for
// that exclusion (a /31 or /32), the full network/broadcast range is used
// instead.
func ToCollection(t Target, checker iface.PhysicalityChecker) (Resolution, error) {
	col := ipaddr.New()
	isLAN, err := resolveInto(t, col, checker)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Collection: col, IsLANScan: isLAN}, nil
}

func resolveInto(t Target, col *ipaddr.Collection, checker iface.PhysicalityChecker) (bool, error) {
	switch t.Kind {
	case KindLAN:
		return resolveLAN(col, checker)

	case KindHost:
		col.AddSingle(t.Addr)
		return false, nil

	case KindRange:
		col.AddRange(t.Range)
		return false, nil

	case KindVPN:
		return false, ErrVPNUnimplemented

	case KindMulti:
		anyLAN := false
		for _, sub := range t.Multi {
			isLAN, err := resolveInto(sub, col, checker)
			if err != nil {
				return false, err
			}
			anyLAN = anyLAN || isLAN
		}
		return anyLAN, nil

	default:
		return false, fmt.Errorf("unknown target kind: %d", t.Kind)
	}
}

func resolveLAN(col *ipaddr.Collection, checker iface.PhysicalityChecker) (bool, error) {
	network, err := iface.GetLANNetwork(checker)
	if err != nil {
		return false, err
	}
	if network == nil {
		return false, nil
	}

	ones, bits := network.Mask.Size()
	if bits != 32 {
		return false, fmt.Errorf("lan network %s is not ipv4", network)
	}

	netU32 := ip4ToUint32(network.IP.To4())
	hostBits := uint32(32 - ones)
	var bcastU32 uint32
	if hostBits >= 32 {
		bcastU32 = 0xFFFFFFFF
	} else {
		bcastU32 = netU32 | ((1 << hostBits) - 1)
	}

	startU32 := saturatingAddOne(netU32)
	endU32 := saturatingSubOne(bcastU32)

	if startU32 <= endU32 {
		col.AddRange(ipaddr.NewIpv4Range(uint32ToIP4(startU32), uint32ToIP4(endU32)))
		return true, nil
	}

	// Network too small to strip the broadcast address; scan it whole.
	col.AddRange(ipaddr.NewIpv4Range(uint32ToIP4(netU32), uint32ToIP4(bcastU32)))
	return true, nil
}

func ip4ToUint32(ip net.IP) uint32 {
	b := ip.To4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func uint32ToIP4(v uint32) net.IP {
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func saturatingAddOne(v uint32) uint32 {
	if v == 0xFFFFFFFF {
		return v
	}
	return v + 1
}

func saturatingSubOne(v uint32) uint32 {
	if v == 0 {
		return v
	}
	return v - 1
}
