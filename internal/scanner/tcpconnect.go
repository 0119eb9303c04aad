package scanner

import (
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/hollowpointer/mappr-sub000/internal/ipaddr"
)

const connectProbeTimeout = 100 * time.Millisecond
const connectProbePort = 443

// TCPConnectScanner is the non-privileged fallback for callers that cannot
// open raw sockets: each target gets a plain TCP connect attempt to port
// 443 with a short timeout. Any completion or refusal (not just a
// successful handshake) implies liveness, since a RST still proves a host
// is present. Grounded on core/src/network/tcp.rs's handshake_probe /
// handshake_range_discovery, given its own Scanner-shaped type so the
// orchestrator can select it the same way it selects the LAN and routed
// scanners.
type TCPConnectScanner struct {
	targets *ipaddr.Collection
}

// NewTCPConnectScanner builds the fallback scanner for targets.
func NewTCPConnectScanner(targets *ipaddr.Collection) *TCPConnectScanner {
	return &TCPConnectScanner{targets: targets}
}

// Run implements Scanner.
func (s *TCPConnectScanner) Run(ctx context.Context) ([]Host, error) {
	var hosts []Host

	for _, ip := range s.targets.All() {
		select {
		case <-ctx.Done():
			return hosts, nil
		default:
		}

		if probeAlive(ctx, ip) {
			hosts = append(hosts, Host{IPs: []net.IP{ip}})
		}
	}

	return hosts, nil
}

// probeAlive reports whether a TCP connect to ip:443 completes or is
// actively refused within the probe timeout; either outcome proves the
// host is present. A timeout (no response at all) means no host.
func probeAlive(ctx context.Context, ip net.IP) bool {
	ctx, cancel := context.WithTimeout(ctx, connectProbeTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(ip.String(), strconv.Itoa(connectProbePort)))
	if err == nil {
		conn.Close()
		return true
	}

	// A connection refused (RST) still proves the host is present, even
	// though the handshake didn't complete. A timeout or any other dial
	// error (e.g. network or host unreachable) does not.
	return errors.Is(err, syscall.ECONNREFUSED)
}
