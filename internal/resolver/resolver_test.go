package resolver

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsQueryableIPv4Always(t *testing.T) {
	assert.True(t, isQueryable(net.IPv4(192, 168, 1, 1)))
	assert.True(t, isQueryable(net.IPv4(8, 8, 8, 8)))
}

func TestIsQueryableIPv6GlobalUnicastOnly(t *testing.T) {
	assert.True(t, isQueryable(net.ParseIP("2001:db8::1")))
	assert.False(t, isQueryable(net.ParseIP("fe80::1")))
	assert.False(t, isQueryable(net.ParseIP("ff02::1")))
}

func TestSystemResolversParsesNameservers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolv.conf")
	content := "nameserver 10.1.1.1\nsearch example.com\nnameserver 10.1.1.2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	servers := systemResolvers(path)
	require.Len(t, servers, 2)
	assert.Equal(t, "10.1.1.1", servers[0].String())
	assert.Equal(t, "10.1.1.2", servers[1].String())
}

func TestSystemResolversMissingFile(t *testing.T) {
	assert.Empty(t, systemResolvers("/nonexistent/resolv.conf"))
}

func TestResolverForPrivateUsesSystemResolver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolv.conf")
	require.NoError(t, os.WriteFile(path, []byte("nameserver 192.168.1.1\n"), 0644))

	server := resolverFor(net.ParseIP("192.168.1.50"), path)
	assert.Equal(t, "192.168.1.1", server.String())
}

func TestResolverForPrivateFallsBackToPublicWithoutConfig(t *testing.T) {
	server := resolverFor(net.ParseIP("10.0.0.5"), "/nonexistent/resolv.conf")
	assert.Equal(t, defaultPublicDNS, server.String())
}

func TestResolverForPublicTargetUsesPublicResolver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolv.conf")
	require.NoError(t, os.WriteFile(path, []byte("nameserver 192.168.1.1\n"), 0644))

	server := resolverFor(net.ParseIP("8.8.4.4"), path)
	assert.Equal(t, defaultPublicDNS, server.String())
}
