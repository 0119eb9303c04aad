package protocols

import (
	"math/rand"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// buildIPv4Layer returns the layer for a minimal 20-byte IPv4 header (no
// options) over protocol, with the Don't Fragment flag set and a random
// identification field, as required by a raw IP socket send of payload.
func buildIPv4Layer(src, dst net.IP, protocol layers.IPProtocol, payloadLen int) layers.IPv4 {
	return layers.IPv4{
		Version:    4,
		IHL:        5,
		TOS:        0,
		Id:         uint16(rand.Uint32()),
		Flags:      layers.IPv4DontFragment,
		FragOffset: 0,
		TTL:        64,
		Protocol:   protocol,
		SrcIP:      src.To4(),
		DstIP:      dst.To4(),
		Length:     uint16(20 + payloadLen),
	}
}

func serializeRawIPv4(opts gopacket.SerializeOptions, layerStack ...gopacket.SerializableLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, opts, layerStack...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
