// apdiscover is a network mapper: given one or more target specifications,
// it discovers live hosts on a local or routed network and enriches them
// with link-layer and naming information.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hollowpointer/mappr-sub000/ap_common/aputil"
	"github.com/hollowpointer/mappr-sub000/internal/discovery"
	"github.com/hollowpointer/mappr-sub000/internal/iface"
	"github.com/hollowpointer/mappr-sub000/internal/metrics"
)

var (
	verbose      bool
	quiet        bool
	noDNS        bool
	vendorDBPath string
	metricsAddr  string
)

func main() {
	log := aputil.NewLogger("apdiscover")

	rootCmd := &cobra.Command{
		Use:           "apdiscover",
		Short:         "Discover and enrich hosts on a local or routed network",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "info"
			switch {
			case verbose:
				level = "debug"
			case quiet:
				level = "warn"
			}
			if err := aputil.LogSetLevel("apdiscover", level); err != nil {
				log.Warnw("failed to set log level", "level", level, "error", err)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and above")
	rootCmd.PersistentFlags().BoolVar(&noDNS, "no-dns", false, "skip hostname resolution")
	rootCmd.PersistentFlags().StringVar(&vendorDBPath, "oui-db-path", "", "path to OUI vendor database")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address for the run's duration (disabled if empty)")

	rootCmd.AddCommand(
		newInfoCmd(),
		newDiscoverCmd(log),
		newListenCmd(),
		newScanCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		aputil.Errorf("%v\n", err)
		os.Exit(1)
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "List local network interfaces and their LAN viability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo()
		},
	}
}

func runInfo() error {
	interfaces, err := iface.Enumerate()
	if err != nil {
		return fmt.Errorf("enumerating interfaces: %w", err)
	}

	checker := iface.DefaultChecker()
	for _, n := range interfaces {
		status := "viable"
		if err := iface.IsViableLAN(n, checker); err != nil {
			status = err.Error()
		}
		fmt.Printf("%-16s mac=%-17s up=%-5t status=%s\n", n.Name, macString(n.HardwareAddr), n.Up, status)
		for _, a := range n.Addrs {
			fmt.Printf("  %s\n", a.IP)
		}
	}
	return nil
}

func macString(mac net.HardwareAddr) string {
	if len(mac) == 0 {
		return "-"
	}
	return mac.String()
}

func newDiscoverCmd(log *zap.SugaredLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "discover <target>",
		Short: "Resolve a target and report every host discovered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(args[0], log)
		},
	}
}

func runDiscover(targetArg string, log *zap.SugaredLogger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if metricsAddr != "" {
		go metrics.Serve(ctx, metricsAddr, log)
	}

	cfg := discovery.Config{
		Target:       targetArg,
		NoDNS:        noDNS,
		VendorDBPath: vendorDBPath,
		Log:          log,
	}

	hosts, err := discovery.Run(ctx, cfg)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	for _, h := range hosts {
		vendor := h.Vendor
		if vendor == "" {
			vendor = "-"
		}
		hostname := h.Hostname
		if hostname == "" {
			hostname = "-"
		}
		fmt.Printf("%-15s mac=%-17s vendor=%-24s hostname=%s\n", h.PrimaryIP(), macString(h.MAC), vendor, hostname)
	}
	return nil
}

// newListenCmd is a stub: passive listening is explicitly out of scope.
func newListenCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "listen",
		Short:  "Passively listen for traffic (not implemented)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("listen: not implemented")
		},
	}
}

// newScanCmd is a stub: port scanning is explicitly out of scope.
func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "scan <target>",
		Short:  "Port-scan a target (not implemented)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("scan: not implemented")
		},
	}
}
