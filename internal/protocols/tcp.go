package protocols

import (
	"math/rand"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const synSourcePortMin = 50000
const synSourcePortMax = 65535

// BuildTCPSYN serializes a raw IPv4 packet (IP header + TCP header, no
// Ethernet framing) carrying a SYN to dst:dstPort, for transmission over a raw
// IPv4 socket. The source port is drawn from the ephemeral range
// [50000, 65535] per probe, matching the reference implementation's SYN
// builder.
func BuildTCPSYN(src, dst net.IP, dstPort uint16) ([]byte, error) {
	srcPort := layers.TCPPort(synSourcePortMin + rand.Intn(synSourcePortMax-synSourcePortMin+1))

	tcp := layers.TCP{
		SrcPort: srcPort,
		DstPort: layers.TCPPort(dstPort),
		Seq:     rand.Uint32(),
		SYN:     true,
		Window:  65535,
		DataOffset: 5,
	}

	ip4 := buildIPv4Layer(src, dst, layers.IPProtocolTCP, 20)
	if err := tcp.SetNetworkLayerForChecksum(&ip4); err != nil {
		return nil, err
	}

	return serializeRawIPv4(
		gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true},
		&ip4, &tcp,
	)
}
