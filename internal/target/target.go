// Package target parses a textual scan target into a canonical IpCollection
// and resolves the "lan" keyword against the local interface inventory. It
// is the Go counterpart of the reference source's network::target module.
package target

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/hollowpointer/mappr-sub000/internal/ipaddr"
)

// Kind discriminates the variants of Target.
type Kind int

const (
	KindLAN Kind = iota
	KindHost
	KindRange
	KindVPN
	KindMulti
)

// Target is a parsed scan target. Exactly one of Addr, Range, or Multi is
// meaningful, selected by Kind.
type Target struct {
	Kind  Kind
	Addr  net.IP
	Range ipaddr.Ipv4Range
	Multi []Target
}

// Parse converts a textual target specification into a Target, probing the
// recognized forms in a fixed order: keywords, comma-separated lists, a
// single host address, an abbreviated or full IPv4 range, then CIDR.
func Parse(s string) (Target, error) {
	lower := strings.ToLower(s)

	if t, ok := parseKeyword(lower); ok {
		return t, nil
	}

	if strings.Contains(s, ",") {
		return parseCommas(s)
	}

	if t, ok := parseHost(s); ok {
		return t, nil
	}

	if t, ok, err := parseIPRange(s); err != nil {
		return Target{}, err
	} else if ok {
		return t, nil
	}

	if t, ok, err := parseCIDRRange(s); err != nil {
		return Target{}, err
	} else if ok {
		return t, nil
	}

	return Target{}, fmt.Errorf("invalid target: %s", s)
}

func parseKeyword(lower string) (Target, bool) {
	switch lower {
	case "lan":
		return Target{Kind: KindLAN}, true
	case "vpn":
		return Target{Kind: KindVPN}, true
	default:
		return Target{}, false
	}
}

func parseCommas(s string) (Target, error) {
	var multi []Target
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := Parse(part)
		if err != nil {
			return Target{}, fmt.Errorf("failed to parse target %q: %w", part, err)
		}
		multi = append(multi, t)
	}
	return Target{Kind: KindMulti, Multi: multi}, nil
}

func parseHost(s string) (Target, bool) {
	ip := net.ParseIP(s)
	if ip == nil {
		return Target{}, false
	}
	return Target{Kind: KindHost, Addr: ip}, true
}

func parseIPRange(s string) (Target, bool, error) {
	dash := strings.Index(s, "-")
	if dash < 0 {
		return Target{}, false, nil
	}
	startStr, endStr := s[:dash], s[dash+1:]

	startAddr := net.ParseIP(startStr).To4()
	if startAddr == nil {
		return Target{}, false, fmt.Errorf("invalid start ip in range %q", startStr)
	}

	endAddr, err := parseRangeEndAddr(endStr, startAddr)
	if err != nil {
		return Target{}, false, err
	}

	return Target{Kind: KindRange, Range: ipaddr.NewIpv4Range(startAddr, endAddr)}, true, nil
}

// parseRangeEndAddr handles both full end addresses ("192.168.1.1-192.168.1.50")
// and abbreviated trailing-octet forms ("192.168.1.1-50", "192.168.1.1-2.50"),
// where the partial octets overwrite the low-order bytes of the start
// address. partial_len octets overwrite start_index = 4 - partial_len
// onward, so "2.66" against 192.168.1.10 yields 192.168.2.66, and "10.2.1"
// against the same start yields 192.10.2.1.
func parseRangeEndAddr(endStr string, startAddr net.IP) (net.IP, error) {
	if full := net.ParseIP(endStr).To4(); full != nil {
		return full, nil
	}

	parts := strings.Split(endStr, ".")
	if len(parts) == 0 || (len(parts) == 1 && parts[0] == "") {
		return nil, fmt.Errorf("end range cannot be empty: %q", endStr)
	}
	if len(parts) > 4 {
		return nil, fmt.Errorf("end range has too many octets: %q", endStr)
	}

	partial := make([]byte, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid end range %q: %w", endStr, err)
		}
		partial[i] = byte(v)
	}

	endOctets := make([]byte, 4)
	copy(endOctets, startAddr.To4())
	startIndex := 4 - len(partial)
	copy(endOctets[startIndex:], partial)

	return net.IP(endOctets), nil
}

func parseCIDRRange(s string) (Target, bool, error) {
	slash := strings.Index(s, "/")
	if slash < 0 {
		return Target{}, false, nil
	}
	ipStr, prefixStr := s[:slash], s[slash+1:]

	ip := net.ParseIP(ipStr).To4()
	if ip == nil {
		return Target{}, false, fmt.Errorf("invalid ip in cidr %q", ipStr)
	}

	prefix, err := strconv.Atoi(prefixStr)
	if err != nil {
		return Target{}, false, fmt.Errorf("invalid prefix in cidr %q: %w", prefixStr, err)
	}

	r, err := ipaddr.CidrRange(ip, prefix)
	if err != nil {
		return Target{}, false, err
	}

	return Target{Kind: KindRange, Range: r}, true, nil
}
