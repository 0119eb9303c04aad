package capture

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowpointer/mappr-sub000/internal/protocols"
)

func TestSplitIPv4HeaderRoundTrip(t *testing.T) {
	packet, err := protocols.BuildTCPSYN(net.IPv4(10, 0, 0, 1), net.IPv4(10, 0, 0, 2), 443)
	require.NoError(t, err)

	header, payload, err := splitIPv4Header(packet)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", header.Src.String())
	assert.Equal(t, "10.0.0.2", header.Dst.String())
	assert.NotEmpty(t, payload)
}

func TestProtoName(t *testing.T) {
	assert.Equal(t, "tcp", protoName(6))
	assert.Equal(t, "udp", protoName(17))
}
