package routemap

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowpointer/mappr-sub000/internal/iface"
	"github.com/hollowpointer/mappr-sub000/internal/ipaddr"
)

func mockInterface(t *testing.T, name, cidr string) iface.NetworkInterface {
	t.Helper()
	ip, n, err := net.ParseCIDR(cidr)
	require.NoError(t, err)
	return iface.NetworkInterface{
		Name:  name,
		Up:    true,
		Addrs: []iface.Addr{{IP: ip, Net: n}},
	}
}

func TestContainsRangeWithinSingleSubnet(t *testing.T) {
	n := mockInterface(t, "eth0", "192.168.1.1/24")
	r := ipaddr.NewIpv4Range(net.ParseIP("192.168.1.10"), net.ParseIP("192.168.1.200"))
	assert.True(t, containsRange(n, r))
}

func TestContainsRangeCrossingBoundary(t *testing.T) {
	n := mockInterface(t, "eth0", "192.168.1.1/24")
	r := ipaddr.NewIpv4Range(net.ParseIP("192.168.1.200"), net.ParseIP("192.168.2.5"))
	assert.False(t, containsRange(n, r))
}

func TestFindLocalIndexIPv4(t *testing.T) {
	interfaces := []iface.NetworkInterface{
		mockInterface(t, "eth0", "10.0.0.1/24"),
		mockInterface(t, "eth1", "192.168.1.1/24"),
	}

	idx, ok := findLocalIndex(interfaces, net.ParseIP("10.0.0.50"))
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	_, ok = findLocalIndex(interfaces, net.ParseIP("8.8.8.8"))
	assert.False(t, ok)
}

func TestFindLocalIndexDoesNotCrossFamilies(t *testing.T) {
	interfaces := []iface.NetworkInterface{
		mockInterface(t, "eth0", "10.0.0.1/24"),
	}
	_, ok := findLocalIndex(interfaces, net.ParseIP("fe80::1"))
	assert.False(t, ok)
}

func TestResolveRouteSourceIPLoopback(t *testing.T) {
	ip, ok := resolveRouteSourceIP(net.ParseIP("127.0.0.1"))
	require.True(t, ok)
	assert.True(t, ip.IsLoopback())
}
