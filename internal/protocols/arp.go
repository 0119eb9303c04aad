package protocols

import (
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	apnet "github.com/hollowpointer/mappr-sub000/ap_common/network"
)

// BuildARPRequest serializes a broadcast ARP request asking who has dstIP,
// sent from srcMAC/srcIP. Grounded on network.buildArpPacket, generalized
// from that package's reply/retry loop to a single stateless build.
func BuildARPRequest(srcMAC net.HardwareAddr, srcIP, dstIP net.IP) ([]byte, error) {
	srcV4 := srcIP.To4()
	dstV4 := dstIP.To4()
	if srcV4 == nil || dstV4 == nil {
		return nil, net.InvalidAddrError("ARP request requires IPv4 addresses")
	}

	ether := layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       apnet.MacBcast,
		EthernetType: layers.EthernetTypeARP,
	}

	arp := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(srcMAC),
		SourceProtAddress: []byte(srcV4),
		DstHwAddress:      []byte(apnet.MacZero),
		DstProtAddress:    []byte(dstV4),
	}

	return serializeEthernet(gopacket.SerializeOptions{}, &ether, &arp)
}
