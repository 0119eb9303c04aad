package protocols

import (
	"errors"
	"net"

	"github.com/miekg/dns"
)

// BuildPTRQuery serializes a reverse-lookup query for addr, using id as the
// 16-bit transaction id the resolver tracks in its pending map. QNAME is
// addr rewritten into the in-addr.arpa (IPv4) or ip6.arpa (IPv6) label
// sequence; encoding is delegated to miekg/dns rather than hand-rolled,
// which also gets incoming name-compression pointers tolerated for free.
func BuildPTRQuery(id uint16, addr net.IP) ([]byte, error) {
	name, err := dns.ReverseAddr(addr.String())
	if err != nil {
		return nil, err
	}

	msg := new(dns.Msg)
	msg.Id = id
	msg.RecursionDesired = true
	msg.Question = []dns.Question{{Name: name, Qtype: dns.TypePTR, Qclass: dns.ClassINET}}

	return msg.Pack()
}

// ErrNoPTRRecord is returned when a DNS response parses cleanly but carries
// no PTR answer.
var ErrNoPTRRecord = errors.New("dns response has no ptr record")

// ParsePTRResponse extracts the transaction id and the first PTR record's
// target hostname from a raw DNS response.
func ParsePTRResponse(data []byte) (id uint16, hostname string, err error) {
	msg := new(dns.Msg)
	if err := msg.Unpack(data); err != nil {
		return 0, "", err
	}

	for _, rr := range msg.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			return msg.Id, ptr.Ptr, nil
		}
	}
	return msg.Id, "", ErrNoPTRRecord
}
