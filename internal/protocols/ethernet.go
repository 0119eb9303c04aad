// Package protocols builds and parses the wire-accurate frames C6/C7 send
// and receive: ARP requests, ICMPv6 echo requests, raw IPv4/TCP SYN
// segments, and DNS PTR queries/responses. Construction is grounded on
// ap_common/network.go's buildArpPacket; parsing follows
// ap.watchd/sampler.go's NewDecodingLayerParser pattern.
package protocols

import (
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// minFrameLen is the minimum Ethernet transmit frame size (no FCS); shorter
// payloads are zero-padded to it.
const minFrameLen = 60

func serializeEthernet(opts gopacket.SerializeOptions, layerStack ...gopacket.SerializableLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, opts, layerStack...); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if len(out) < minFrameLen {
		padded := make([]byte, minFrameLen)
		copy(padded, out)
		out = padded
	}
	return out, nil
}

// ivMulticastV6 maps an IPv6 multicast address onto its Ethernet multicast
// MAC per RFC 2464: 33:33:xx:xx:xx:xx from the address's last four bytes.
func ivMulticastV6(dst net.IP) net.HardwareAddr {
	v6 := dst.To16()
	return net.HardwareAddr{0x33, 0x33, v6[12], v6[13], v6[14], v6[15]}
}

// SourceIP extracts the source address from a captured Ethernet frame by
// ethertype: ARP yields the sender protocol address, IPv4/IPv6 yield the
// network-layer source address. Any other ethertype yields ok=false.
func SourceIP(frame []byte) (net.IP, bool) {
	var eth layers.Ethernet
	var arp layers.ARP
	var ip4 layers.IPv4
	var ip6 layers.IPv6

	parser := gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet, &eth, &arp, &ip4, &ip6)
	parser.IgnoreUnsupported = true

	decoded := make([]gopacket.LayerType, 0, 2)
	if err := parser.DecodeLayers(frame, &decoded); err != nil && len(decoded) == 0 {
		return nil, false
	}

	for _, lt := range decoded {
		switch lt {
		case layers.LayerTypeARP:
			return net.IP(arp.SourceProtAddress), true
		case layers.LayerTypeIPv4:
			return ip4.SrcIP, true
		case layers.LayerTypeIPv6:
			return ip6.SrcIP, true
		}
	}
	return nil, false
}
