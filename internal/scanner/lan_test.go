package scanner

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowpointer/mappr-sub000/internal/ipaddr"
	"github.com/hollowpointer/mappr-sub000/internal/protocols"
)

func TestProcessFrameInsertsNewHostAndForwardsToDNS(t *testing.T) {
	targets := ipaddr.New()
	targets.AddSingle(net.ParseIP("192.168.1.20"))

	dnsTx := make(chan net.IP, 4)
	s := &LANScanner{
		cfg:     LANConfig{ProbeICMPv6: false},
		dnsTx:   dnsTx,
		targets: map[string]bool{"192.168.1.20": true},
	}

	neighborMAC := net.HardwareAddr{0x02, 0x11, 0x22, 0x33, 0x44, 0x55}
	frame, err := protocols.BuildARPRequest(neighborMAC, net.IPv4(192, 168, 1, 20), net.IPv4(192, 168, 1, 1))
	require.NoError(t, err)

	hosts := make(map[string]*Host)
	timer := NewScanTimer(1000, 1000, 1000)
	s.processFrame(frame, hosts, timer)

	require.Len(t, hosts, 1)
	host := hosts[neighborMAC.String()]
	require.NotNil(t, host)
	assert.Equal(t, neighborMAC, host.MAC)
	require.Len(t, host.IPs, 1)
	assert.True(t, host.IPs[0].Equal(net.IPv4(192, 168, 1, 20)))

	select {
	case ip := <-dnsTx:
		assert.True(t, ip.Equal(net.IPv4(192, 168, 1, 20)))
	default:
		t.Fatal("expected dns handoff for new host")
	}
}

func TestProcessFrameDropsOutOfSubnetSource(t *testing.T) {
	s := &LANScanner{
		cfg:     LANConfig{},
		targets: map[string]bool{"192.168.1.20": true},
	}

	neighborMAC := net.HardwareAddr{0x02, 0x11, 0x22, 0x33, 0x44, 0x55}
	frame, err := protocols.BuildARPRequest(neighborMAC, net.IPv4(10, 0, 0, 5), net.IPv4(192, 168, 1, 1))
	require.NoError(t, err)

	hosts := make(map[string]*Host)
	timer := NewScanTimer(1000, 1000, 1000)
	s.processFrame(frame, hosts, timer)

	assert.Empty(t, hosts)
}
