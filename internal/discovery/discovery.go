// Package discovery composes the target resolver, route mapper, on-the-wire
// scanners, hostname resolver, and vendor lookup into a single discovery
// cycle. Grounded on core/src/scanner/mod.rs's run_discovery, which performs
// the same resolve -> map -> scan -> resolve-hostnames -> enrich pipeline.
package discovery

import (
	"context"
	"net"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hollowpointer/mappr-sub000/internal/iface"
	"github.com/hollowpointer/mappr-sub000/internal/metrics"
	"github.com/hollowpointer/mappr-sub000/internal/resolver"
	"github.com/hollowpointer/mappr-sub000/internal/routemap"
	"github.com/hollowpointer/mappr-sub000/internal/scanner"
	"github.com/hollowpointer/mappr-sub000/internal/target"
	"github.com/hollowpointer/mappr-sub000/internal/vendor"
)

// dnsQueueDepth bounds the channel carrying newly-discovered addresses to
// the resolver; a full queue drops the address rather than blocking a
// scanner's read loop, since hostname resolution is best-effort.
const dnsQueueDepth = 256

// Config carries everything one discovery run needs.
type Config struct {
	Target       string
	NoDNS        bool
	VendorDBPath string
	Log          *zap.SugaredLogger
}

// Run resolves Target, maps its addresses onto local interfaces, scans each
// partition with the strategy appropriate to that interface and the
// caller's privilege level, resolves hostnames for whatever was found, and
// returns the merged, vendor-enriched host list.
func Run(ctx context.Context, cfg Config) ([]scanner.Host, error) {
	t, err := target.Parse(cfg.Target)
	if err != nil {
		return nil, err
	}

	resolution, err := target.ToCollection(t, iface.DefaultChecker())
	if err != nil {
		return nil, err
	}

	mappings, err := routemap.Map(ctx, resolution.Collection)
	if err != nil {
		return nil, err
	}

	var dnsTx chan net.IP
	var res *resolver.Resolver
	var resolverDone chan map[string]string
	if !cfg.NoDNS {
		dnsTx = make(chan net.IP, dnsQueueDepth)
		res, err = resolver.New(cfg.Log)
		if err != nil {
			return nil, err
		}
		defer res.Close()

		resolverDone = make(chan map[string]string, 1)
		go func() {
			resolverDone <- res.Run(ctx, dnsTx)
		}()
	}

	hosts, err := runScanners(ctx, mappings, resolution.IsLANScan, dnsTx, cfg.Log)

	if dnsTx != nil {
		close(dnsTx)
	}
	if err != nil {
		return nil, err
	}

	var hostnames map[string]string
	if resolverDone != nil {
		hostnames = <-resolverDone
	}

	applyHostnames(hosts, hostnames)
	enrichVendors(hosts, vendor.NewOUIRepo(vendor.DefaultDBPath(cfg.VendorDBPath)))

	return hosts, nil
}

// runScanners picks a scanner for every mapping and runs them concurrently,
// merging their results.
func runScanners(ctx context.Context, mappings []routemap.Mapping, isLANScan bool, dnsTx chan<- net.IP, log *zap.SugaredLogger) ([]scanner.Host, error) {
	g, ctx := errgroup.WithContext(ctx)

	results := make([][]scanner.Host, len(mappings))
	for i, m := range mappings {
		i, m := i, m
		g.Go(func() error {
			s, scannerType, err := scannerFor(m, isLANScan, dnsTx, log)
			if err != nil {
				if log != nil {
					log.Warnw("skipping interface", "interface", m.Interface.Name, "error", err)
				}
				return nil
			}

			rec := metrics.StartScan(scannerType)
			hosts, err := s.Run(ctx)
			rec.Finish(err, len(hosts))
			if err != nil {
				if log != nil {
					log.Warnw("scan failed", "interface", m.Interface.Name, "type", scannerType, "error", err)
				}
				return nil
			}
			results[i] = hosts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []scanner.Host
	for _, r := range results {
		merged = append(merged, r...)
	}
	return mergeHosts(merged), nil
}

// scannerFor picks the discovery strategy for one interface partition: LAN
// (ARP/ICMPv6) when the interface is LAN-viable and the resolved target
// called for a LAN sweep; otherwise a privileged raw-socket routed scan when
// the process can open one; otherwise the non-privileged TCP-connect
// fallback.
func scannerFor(m routemap.Mapping, isLANScan bool, dnsTx chan<- net.IP, log *zap.SugaredLogger) (scanner.Scanner, string, error) {
	checker := iface.DefaultChecker()

	if isLANScan && iface.IsViableLAN(m.Interface, checker) == nil {
		cfg := scanner.LANConfig{
			SrcMAC:         m.Interface.HardwareAddr,
			SrcIPv4Net:     m.Interface.FirstPrivateIPv4Net(),
			SrcLinkLocalV6: firstLinkLocalV6(m.Interface),
			Targets:        m.Addresses,
			ProbeICMPv6:    true,
		}
		s, err := scanner.NewLANScanner(m.Interface.Name, cfg, dnsTx, log)
		if err == nil {
			return s, "lan", nil
		}
		// Fall through to the routed/connect strategies below: a LAN
		// interface that fails to open its capture handle (e.g. a
		// permissions error) still has a reachable address space.
	}

	if isPrivileged() {
		s, err := scanner.NewRoutedScanner(scanner.RoutedConfig{
			SrcV4:   firstPrivateV4(m.Interface),
			SrcV6:   firstLinkLocalV6(m.Interface),
			Targets: m.Addresses,
		}, dnsTx, log)
		if err == nil {
			return s, "routed", nil
		}
	}

	return scanner.NewTCPConnectScanner(m.Addresses), "tcp-connect", nil
}

// isPrivileged reports whether the process can plausibly open raw sockets.
// os.Geteuid returns -1 on platforms without the concept (e.g. Windows),
// which never equals 0 and so correctly falls back to the unprivileged
// path there too.
func isPrivileged() bool {
	return os.Geteuid() == 0
}

func firstPrivateV4(n iface.NetworkInterface) net.IP {
	if ipnet := n.FirstPrivateIPv4Net(); ipnet != nil {
		return ipnet.IP
	}
	return nil
}

func firstLinkLocalV6(n iface.NetworkInterface) net.IP {
	for _, a := range n.Addrs {
		if a.IP.To4() == nil && a.IP.IsLinkLocalUnicast() {
			return a.IP
		}
	}
	return nil
}

// mergeHosts collapses hosts discovered more than once (e.g. seen by both a
// LAN sweep and a routed probe from another interface) keyed by MAC when
// present, otherwise by primary IP.
func mergeHosts(hosts []scanner.Host) []scanner.Host {
	byKey := make(map[string]*scanner.Host)
	order := make([]string, 0, len(hosts))

	for _, h := range hosts {
		key := hostKey(h)
		existing, ok := byKey[key]
		if !ok {
			hCopy := h
			byKey[key] = &hCopy
			order = append(order, key)
			continue
		}
		for _, ip := range h.IPs {
			existing.AddIP(ip)
		}
		if existing.MAC == nil && h.MAC != nil {
			existing.MAC = h.MAC
		}
	}

	out := make([]scanner.Host, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out
}

func hostKey(h scanner.Host) string {
	if h.MAC != nil {
		return "mac:" + h.MAC.String()
	}
	if ip := h.PrimaryIP(); ip != nil {
		return "ip:" + ip.String()
	}
	return ""
}

func applyHostnames(hosts []scanner.Host, hostnames map[string]string) {
	if hostnames == nil {
		return
	}
	for i := range hosts {
		for _, ip := range hosts[i].IPs {
			if name, ok := hostnames[ip.String()]; ok {
				hosts[i].Hostname = name
				metrics.RecordHostResolved()
				break
			}
		}
	}
}

// enrichVendors fills in Vendor for every host with a MAC address, kept as
// its own unit so it can be driven directly in tests without a live scan.
func enrichVendors(hosts []scanner.Host, lookup vendor.Lookup) {
	for i := range hosts {
		if hosts[i].MAC == nil {
			continue
		}
		if name, ok := lookup.Get(hosts[i].MAC); ok {
			hosts[i].Vendor = name
		}
	}
}
