package resolver

import (
	"bufio"
	"net"
	"os"
	"strings"
)

const defaultPublicDNS = "8.8.8.8"

// systemResolvers returns the nameserver addresses configured in
// /etc/resolv.conf, in file order.
func systemResolvers(path string) []net.IP {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []net.IP
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != "nameserver" {
			continue
		}
		if ip := net.ParseIP(fields[1]); ip != nil {
			out = append(out, ip)
		}
	}
	return out
}

// resolverFor picks which DNS server to query for target: the first
// configured system resolver for private/local targets, falling back to a
// public resolver only when none is configured; a public resolver for
// globally-routable targets.
func resolverFor(target net.IP, systemResolverPath string) net.IP {
	if isPrivateOrLocal(target) {
		if servers := systemResolvers(systemResolverPath); len(servers) > 0 {
			return servers[0]
		}
	}
	return net.ParseIP(defaultPublicDNS)
}

func isPrivateOrLocal(ip net.IP) bool {
	if v4 := ip.To4(); v4 != nil {
		return v4.IsPrivate() || v4.IsLoopback() || v4.IsLinkLocalUnicast()
	}
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
}
