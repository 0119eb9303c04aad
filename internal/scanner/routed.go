package scanner

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/hollowpointer/mappr-sub000/internal/capture"
	"github.com/hollowpointer/mappr-sub000/internal/ipaddr"
	"github.com/hollowpointer/mappr-sub000/internal/protocols"
)

const (
	routedMinScanDuration = 200 * time.Millisecond
	routedMaxScanDuration = 3000 * time.Millisecond
	routedMsPerIP         = 0.5
	routedSYNPort         = 443
)

// RoutedConfig carries the source addresses and targets a routed scan needs.
type RoutedConfig struct {
	SrcV4   net.IP
	SrcV6   net.IP
	Targets *ipaddr.Collection
}

// RoutedScanner probes not-on-link addresses via a half-open TCP handshake,
// counting any response (SYN/ACK or RST) as proof of liveness. Grounded on
// core/src/scanner/routed.rs's RoutedScanner. The raw transport capture is
// IPv4-only (per the capture channel's own scope); IPv6 targets are not
// probed at all, since no raw IPv6 transport channel exists here — see
// DESIGN.md.
type RoutedScanner struct {
	cfg   RoutedConfig
	ch    *capture.L4Channel
	dnsTx chan<- net.IP
	log   *zap.SugaredLogger
}

// NewRoutedScanner opens a raw IPv4 TCP transport channel and validates
// that at least one source address is available.
func NewRoutedScanner(cfg RoutedConfig, dnsTx chan<- net.IP, log *zap.SugaredLogger) (*RoutedScanner, error) {
	if cfg.SrcV4 == nil && cfg.SrcV6 == nil {
		return nil, errors.New("interface has no ip addresses")
	}

	ch, err := capture.OpenL4(tcpProtocolNumber)
	if err != nil {
		return nil, err
	}

	return &RoutedScanner{cfg: cfg, ch: ch, dnsTx: dnsTx, log: log}, nil
}

const tcpProtocolNumber = 6

// Run implements Scanner.
func (s *RoutedScanner) Run(ctx context.Context) ([]Host, error) {
	defer s.ch.Close()

	targets := s.cfg.Targets.All()
	responded := make(map[string]net.IP)

	if err := s.sendDiscoveryPackets(targets); err != nil && s.log != nil {
		s.log.Warnw("failed to send routed discovery packets", "error", err)
	}

	deadline := time.Now().Add(calculateDeadline(len(targets)))
	segments := s.ch.Segments()

	for s.shouldContinue(ctx, deadline, len(responded), len(targets)) {
		select {
		case <-ctx.Done():
			goto done
		case seg, ok := <-segments:
			if !ok {
				goto done
			}
			s.processSegment(seg, targets, responded)
		case <-time.After(time.Until(deadline)):
			goto done
		}
	}

done:
	out := make([]Host, 0, len(responded))
	for _, ip := range responded {
		out = append(out, Host{IPs: []net.IP{ip}})
	}
	return out, nil
}

func (s *RoutedScanner) shouldContinue(ctx context.Context, deadline time.Time, responded, total int) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	return time.Now().Before(deadline) && responded < total
}

func (s *RoutedScanner) sendDiscoveryPackets(targets []net.IP) error {
	var firstErr error
	for _, dst := range targets {
		if dst.To4() == nil {
			// IPv6 targets are not probed; see type doc.
			continue
		}
		if s.cfg.SrcV4 == nil {
			continue
		}
		packet, err := protocols.BuildTCPSYN(s.cfg.SrcV4, dst, routedSYNPort)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.ch.Send(packet); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *RoutedScanner) processSegment(seg capture.Segment, targets []net.IP, responded map[string]net.IP) {
	key := seg.Source.String()
	if !containsIP(targets, seg.Source) {
		return
	}
	if _, already := responded[key]; already {
		return
	}
	responded[key] = seg.Source

	if s.dnsTx != nil {
		select {
		case s.dnsTx <- seg.Source:
		default:
		}
	}
}

func containsIP(targets []net.IP, ip net.IP) bool {
	for _, t := range targets {
		if t.Equal(ip) {
			return true
		}
	}
	return false
}

func calculateDeadline(numTargets int) time.Duration {
	variable := time.Duration(float64(numTargets) * routedMsPerIP * float64(time.Millisecond))
	d := variable
	if d < routedMinScanDuration {
		return routedMinScanDuration
	}
	if d > routedMaxScanDuration {
		return routedMaxScanDuration
	}
	return d
}
