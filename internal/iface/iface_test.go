package iface

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeChecker struct {
	physical map[string]bool
	wireless map[string]bool
}

func (f fakeChecker) IsPhysical(name string) bool { return f.physical[name] }
func (f fakeChecker) IsWireless(name string) bool { return f.wireless[name] }

func nonePhysical() fakeChecker {
	return fakeChecker{physical: map[string]bool{}, wireless: map[string]bool{}}
}

func mockInterface(name string, mac net.HardwareAddr, addrs []Addr, up, bcast, loopback, ptp bool) NetworkInterface {
	return NetworkInterface{
		Name:         name,
		HardwareAddr: mac,
		Addrs:        addrs,
		Up:           up,
		Broadcast:    bcast,
		Loopback:     loopback,
		PointToPoint: ptp,
	}
}

func defaultMAC() net.HardwareAddr {
	return net.HardwareAddr{0x1, 0x2, 0x3, 0x4, 0x5, 0x6}
}

func defaultAddrs() []Addr {
	_, n, _ := net.ParseCIDR("192.168.1.100/24")
	return []Addr{{IP: net.ParseIP("192.168.1.100"), Net: n}}
}

func linkLocalV6Addrs() []Addr {
	ip := net.ParseIP("fe80::1234:5678:abcd:ef01")
	return []Addr{{IP: ip, Net: &net.IPNet{IP: ip, Mask: net.CIDRMask(64, 128)}}}
}

func globalV6Addrs() []Addr {
	ip := net.ParseIP("2001:db8::1")
	return []Addr{{IP: ip, Net: &net.IPNet{IP: ip, Mask: net.CIDRMask(32, 128)}}}
}

func TestIsViableLANSucceeds(t *testing.T) {
	iface := mockInterface("eth0", defaultMAC(), defaultAddrs(), true, true, false, false)
	p := fakeChecker{physical: map[string]bool{"eth0": true}}
	assert.NoError(t, IsViableLAN(iface, p))
}

func TestIsViableLANSucceedsWithLinkLocalV6(t *testing.T) {
	iface := mockInterface("eth0", defaultMAC(), linkLocalV6Addrs(), true, true, false, false)
	p := fakeChecker{physical: map[string]bool{"eth0": true}}
	assert.NoError(t, IsViableLAN(iface, p))
}

func TestIsViableLANFailsWithGlobalV6Only(t *testing.T) {
	iface := mockInterface("eth0", defaultMAC(), globalV6Addrs(), true, true, false, false)
	p := fakeChecker{physical: map[string]bool{"eth0": true}}
	assert.ErrorIs(t, IsViableLAN(iface, p), ErrNoValidLanIP)
}

func TestIsViableLANFailsNotPhysical(t *testing.T) {
	iface := mockInterface("eth1", defaultMAC(), defaultAddrs(), true, true, false, false)
	p := nonePhysical()
	assert.ErrorIs(t, IsViableLAN(iface, p), ErrNotPhysical)
}

func TestIsViableLANFailsNoMac(t *testing.T) {
	iface := mockInterface("eth0", nil, defaultAddrs(), true, true, false, false)
	p := fakeChecker{physical: map[string]bool{"eth0": true}}
	assert.ErrorIs(t, IsViableLAN(iface, p), ErrNoMacAddress)
}

func TestIsViableLANFailsNoIPs(t *testing.T) {
	iface := mockInterface("eth8", defaultMAC(), nil, true, true, false, false)
	p := fakeChecker{physical: map[string]bool{"eth8": true}}
	assert.ErrorIs(t, IsViableLAN(iface, p), ErrNoValidLanIP)
}

func TestIsViableLANFailsWhenDown(t *testing.T) {
	iface := mockInterface("wlan0", defaultMAC(), defaultAddrs(), false, true, false, false)
	p := fakeChecker{physical: map[string]bool{"wlan0": true}}
	assert.ErrorIs(t, IsViableLAN(iface, p), ErrIsDown)
}

func TestIsViableLANFailsLoopback(t *testing.T) {
	iface := mockInterface("lo", defaultMAC(), defaultAddrs(), true, true, true, false)
	p := fakeChecker{physical: map[string]bool{"lo": true}}
	assert.ErrorIs(t, IsViableLAN(iface, p), ErrNotPhysical)
}

func TestIsViableLANFailsNotBroadcast(t *testing.T) {
	iface := mockInterface("eth0", defaultMAC(), defaultAddrs(), true, false, false, false)
	p := fakeChecker{physical: map[string]bool{"eth0": true}}
	assert.ErrorIs(t, IsViableLAN(iface, p), ErrNotBroadcast)
}

func TestIsViableLANFailsPointToPoint(t *testing.T) {
	iface := mockInterface("tun0", defaultMAC(), defaultAddrs(), true, true, false, true)
	p := fakeChecker{physical: map[string]bool{"tun0": true}}
	assert.ErrorIs(t, IsViableLAN(iface, p), ErrIsPointToPoint)
}

func TestSelectLANPicksOnlyCandidate(t *testing.T) {
	wl := mockInterface("wlan0", defaultMAC(), defaultAddrs(), true, true, false, false)
	p := fakeChecker{physical: map[string]bool{"wlan0": true}, wireless: map[string]bool{"wlan0": true}}

	chosen, ok := SelectLAN([]NetworkInterface{wl}, p)
	assert.True(t, ok)
	assert.Equal(t, "wlan0", chosen.Name)
}

func TestSelectLANPrefersWiredOverWireless(t *testing.T) {
	wired := mockInterface("eth0", defaultMAC(), defaultAddrs(), true, true, false, false)
	wireless := mockInterface("wlan0", defaultMAC(), defaultAddrs(), true, true, false, false)
	p := fakeChecker{
		physical: map[string]bool{"eth0": true, "wlan0": true},
		wireless: map[string]bool{"wlan0": true},
	}

	chosen, ok := SelectLAN([]NetworkInterface{wireless, wired}, p)
	assert.True(t, ok)
	assert.Equal(t, "eth0", chosen.Name)
}

func TestSelectLANReturnsFalseOnEmpty(t *testing.T) {
	_, ok := SelectLAN(nil, nonePhysical())
	assert.False(t, ok)
}
