package protocols

import (
	"encoding/binary"
	"errors"
	"math/rand"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	apnet "github.com/hollowpointer/mappr-sub000/ap_common/network"
)

// BuildICMPv6EchoRequest serializes an ICMPv6 echo request addressed to the
// all-nodes multicast ff02::1, sent from the interface's MAC and link-local
// address with hop_limit=1 so it never crosses a router.
func BuildICMPv6EchoRequest(srcMAC net.HardwareAddr, srcLinkLocal net.IP) ([]byte, error) {
	src := srcLinkLocal.To16()
	if src == nil || src.To4() != nil {
		return nil, errors.New("icmpv6 echo request requires an ipv6 link-local source address")
	}
	dst := apnet.AllNodesV6

	ether := layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       ivMulticastV6(dst),
		EthernetType: layers.EthernetTypeIPv6,
	}

	ip6 := layers.IPv6{
		Version:    6,
		NextHeader: layers.IPProtocolICMPv6,
		HopLimit:   1,
		FlowLabel:  rand.Uint32() & 0xFFFFF,
		SrcIP:      src,
		DstIP:      dst,
	}

	icmp6 := layers.ICMPv6{
		TypeCode: layers.CreateICMPv6TypeCode(layers.ICMPv6TypeEchoRequest, 0),
	}
	if err := icmp6.SetNetworkLayerForChecksum(&ip6); err != nil {
		return nil, err
	}

	echo := make([]byte, 4)
	binary.BigEndian.PutUint16(echo[0:2], uint16(rand.Uint32()))
	binary.BigEndian.PutUint16(echo[2:4], 0)

	return serializeEthernet(
		gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true},
		&ether, &ip6, &icmp6, gopacket.Payload(echo),
	)
}
