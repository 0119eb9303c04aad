package discovery

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hollowpointer/mappr-sub000/internal/scanner"
)

func mustMAC(t *testing.T, s string) net.HardwareAddr {
	t.Helper()
	mac, err := net.ParseMAC(s)
	assert.NoError(t, err)
	return mac
}

func TestMergeHostsCollapsesByMAC(t *testing.T) {
	mac := mustMAC(t, "02:11:22:33:44:55")
	hosts := []scanner.Host{
		{MAC: mac, IPs: []net.IP{net.IPv4(192, 168, 1, 10)}},
		{MAC: mac, IPs: []net.IP{net.IPv4(192, 168, 1, 10), net.ParseIP("fe80::1")}},
	}

	merged := mergeHosts(hosts)
	assert.Len(t, merged, 1)
	assert.Len(t, merged[0].IPs, 2)
}

func TestMergeHostsKeepsDistinctMACsSeparate(t *testing.T) {
	hosts := []scanner.Host{
		{MAC: mustMAC(t, "02:11:22:33:44:55"), IPs: []net.IP{net.IPv4(192, 168, 1, 10)}},
		{MAC: mustMAC(t, "02:aa:bb:cc:dd:ee"), IPs: []net.IP{net.IPv4(192, 168, 1, 11)}},
	}
	assert.Len(t, mergeHosts(hosts), 2)
}

func TestMergeHostsFallsBackToIPWhenNoMAC(t *testing.T) {
	ip := net.IPv4(10, 0, 0, 5)
	hosts := []scanner.Host{
		{IPs: []net.IP{ip}},
		{IPs: []net.IP{ip}},
	}
	merged := mergeHosts(hosts)
	assert.Len(t, merged, 1)
}

type fakeLookup struct {
	name string
	ok   bool
}

func (f fakeLookup) Get(net.HardwareAddr) (string, bool) { return f.name, f.ok }

func TestEnrichVendorsFillsVendorForHostsWithMAC(t *testing.T) {
	hosts := []scanner.Host{
		{MAC: mustMAC(t, "02:11:22:33:44:55")},
		{IPs: []net.IP{net.IPv4(10, 0, 0, 1)}},
	}
	enrichVendors(hosts, fakeLookup{name: "Acme Corp", ok: true})

	assert.Equal(t, "Acme Corp", hosts[0].Vendor)
	assert.Empty(t, hosts[1].Vendor)
}

func TestApplyHostnamesMatchesByIP(t *testing.T) {
	ip := net.IPv4(192, 168, 1, 20)
	hosts := []scanner.Host{{IPs: []net.IP{ip}}}
	applyHostnames(hosts, map[string]string{ip.String(): "printer.local"})

	assert.Equal(t, "printer.local", hosts[0].Hostname)
}

func TestApplyHostnamesNoOpOnNilMap(t *testing.T) {
	hosts := []scanner.Host{{IPs: []net.IP{net.IPv4(192, 168, 1, 20)}}}
	applyHostnames(hosts, nil)
	assert.Empty(t, hosts[0].Hostname)
}
