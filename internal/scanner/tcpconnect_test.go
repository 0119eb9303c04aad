package scanner

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowpointer/mappr-sub000/internal/ipaddr"
)

func TestTCPConnectScannerFindsClosedLocalPort(t *testing.T) {
	col := ipaddr.New()
	col.AddSingle(net.ParseIP("127.0.0.1"))

	s := NewTCPConnectScanner(col)
	hosts, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, "127.0.0.1", hosts[0].PrimaryIP().String())
}

func TestTCPConnectScannerNoHostForUnroutedTestNet(t *testing.T) {
	col := ipaddr.New()
	col.AddSingle(net.ParseIP("203.0.113.1"))

	s := NewTCPConnectScanner(col)
	hosts, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, hosts)
}
