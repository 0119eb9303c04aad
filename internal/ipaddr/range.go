// Package ipaddr provides the IPv4 range and address-collection primitives
// used by target parsing and route mapping. It mirrors the conversion
// helpers bg's own ap_common/network package keeps alongside packet code,
// but scoped to pure address arithmetic.
package ipaddr

import (
	"encoding/binary"
	"fmt"
	"net"
)

// Ipv4Range is an inclusive, ordered pair of IPv4 addresses.
type Ipv4Range struct {
	Start net.IP
	End   net.IP
}

// NewIpv4Range builds a range from two IPv4 addresses, normalizing both to
// 4-byte form.
func NewIpv4Range(start, end net.IP) Ipv4Range {
	return Ipv4Range{Start: start.To4(), End: end.To4()}
}

func ipToUint32(ip net.IP) uint32 {
	b := ip.To4()
	return binary.BigEndian.Uint32(b)
}

func uint32ToIP(v uint32) net.IP {
	b := make(net.IP, net.IPv4len)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// Contains reports whether ip falls within the inclusive range.
func (r Ipv4Range) Contains(ip net.IP) bool {
	v4 := ip.To4()
	if v4 == nil {
		return false
	}
	v := ipToUint32(v4)
	return v >= ipToUint32(r.Start) && v <= ipToUint32(r.End)
}

// Len returns the number of addresses covered by the range.
func (r Ipv4Range) Len() uint64 {
	return uint64(ipToUint32(r.End)) - uint64(ipToUint32(r.Start)) + 1
}

// Iterator walks the range lazily, one address at a time.
type Iterator struct {
	cur, end uint32
	done     bool
}

// Iterate returns a lazy iterator over every address in the range.
func (r Ipv4Range) Iterate() *Iterator {
	return &Iterator{cur: ipToUint32(r.Start), end: ipToUint32(r.End)}
}

// Next returns the next address and true, or a zero value and false once the
// range is exhausted.
func (it *Iterator) Next() (net.IP, bool) {
	if it.done || it.cur > it.end {
		return nil, false
	}
	ip := uint32ToIP(it.cur)
	if it.cur == it.end {
		it.done = true
	} else {
		it.cur++
	}
	return ip, true
}

// All materializes every address in the range. Intended for small ranges
// (tests, CIDR expansion verification); scanners should prefer Iterate.
func (r Ipv4Range) All() []net.IP {
	out := make([]net.IP, 0, r.Len())
	it := r.Iterate()
	for ip, ok := it.Next(); ok; ip, ok = it.Next() {
		out = append(out, ip)
	}
	return out
}

// CidrRange computes the network and broadcast addresses of ip/prefix and
// returns the full range they bound. prefix 0 yields the entire IPv4 space.
func CidrRange(ip net.IP, prefix int) (Ipv4Range, error) {
	if prefix < 0 || prefix > 32 {
		return Ipv4Range{}, fmt.Errorf("invalid ipv4 prefix: %d", prefix)
	}
	v4 := ip.To4()
	if v4 == nil {
		return Ipv4Range{}, fmt.Errorf("not an ipv4 address: %s", ip)
	}

	mask := net.CIDRMask(prefix, 32)
	network := v4.Mask(mask)

	netU32 := ipToUint32(network)
	hostBits := uint32(32 - prefix)
	var bcastU32 uint32
	if hostBits == 32 {
		bcastU32 = 0xFFFFFFFF
	} else {
		bcastU32 = netU32 | ((1 << hostBits) - 1)
	}

	return NewIpv4Range(uint32ToIP(netU32), uint32ToIP(bcastU32)), nil
}
