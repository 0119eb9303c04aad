package scanner

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/hollowpointer/mappr-sub000/ap_common/aputil"
	"github.com/hollowpointer/mappr-sub000/internal/capture"
	"github.com/hollowpointer/mappr-sub000/internal/ipaddr"
	"github.com/hollowpointer/mappr-sub000/internal/protocols"
)

const (
	lanMaxChannelTime = 7500 * time.Millisecond
	lanMinChannelTime = 2500 * time.Millisecond
	lanMaxSilence     = 500 * time.Millisecond

	dropLogBaseDelay = time.Second
	dropLogMaxDelay  = 30 * time.Second
)

// LANConfig carries everything the LAN scanner needs to build its probes
// and classify received frames. ProbeICMPv6 replaces the reference
// implementation's process-wide IS_LAN_SCAN atomic: the orchestrator sets
// it explicitly when C1 resolved a LAN target, rather than every LAN
// scanner consulting shared global state.
type LANConfig struct {
	SrcMAC         net.HardwareAddr
	SrcIPv4Net     *net.IPNet
	SrcLinkLocalV6 net.IP
	Targets        *ipaddr.Collection
	ProbeICMPv6    bool
}

// LANScanner discovers same-subnet hosts via ARP and, when ProbeICMPv6 is
// set, an ICMPv6 all-nodes echo sweep. Grounded on
// core/src/scanner/local.rs's LocalScanner.
type LANScanner struct {
	cfg     LANConfig
	ch      *capture.L2Channel
	dnsTx   chan<- net.IP
	log     *zap.SugaredLogger
	dropLog *aputil.ThrottledLogger
	targets map[string]bool // string-keyed target-address membership for O(1) lookup
}

// NewLANScanner opens the L2 capture channel on ifaceName and prepares the
// scanner. dnsTx may be nil if the caller (e.g. Config.NoDNS) opted out of
// hostname resolution.
func NewLANScanner(ifaceName string, cfg LANConfig, dnsTx chan<- net.IP, log *zap.SugaredLogger) (*LANScanner, error) {
	ch, err := capture.OpenL2(ifaceName)
	if err != nil {
		return nil, err
	}

	targets := make(map[string]bool)
	for _, ip := range cfg.Targets.All() {
		targets[ip.String()] = true
	}

	var dropLog *aputil.ThrottledLogger
	if log != nil {
		dropLog = aputil.GetThrottledLogger(log, dropLogBaseDelay, dropLogMaxDelay)
	}

	return &LANScanner{cfg: cfg, ch: ch, dnsTx: dnsTx, log: log, dropLog: dropLog, targets: targets}, nil
}

// Run implements Scanner.
func (s *LANScanner) Run(ctx context.Context) ([]Host, error) {
	defer s.ch.Close()

	hosts := make(map[string]*Host)

	if err := s.sendDiscoveryPackets(); err != nil && s.log != nil {
		s.log.Warnw("failed to send lan discovery packets", "error", err)
	}

	timer := NewScanTimer(lanMaxChannelTime, lanMinChannelTime, lanMaxSilence)
	frames := s.ch.Frames()

	for s.shouldContinue(ctx, timer, len(hosts)) {
		select {
		case <-ctx.Done():
			goto done

		case frame, ok := <-frames:
			if !ok {
				goto done
			}
			s.processFrame(frame, hosts, timer)

		case <-time.After(lanMaxSilence):
			if timer.ShouldBreakOnSilence() {
				goto done
			}
		}
	}

done:
	out := make([]Host, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, *h)
	}
	return out, nil
}

func (s *LANScanner) shouldContinue(ctx context.Context, timer *ScanTimer, discovered int) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	return !timer.Expired() && discovered < len(s.targets)
}

func (s *LANScanner) sendDiscoveryPackets() error {
	var firstErr error

	if s.cfg.SrcIPv4Net != nil {
		for _, ip := range s.cfg.Targets.All() {
			if ip.To4() == nil {
				continue
			}
			frame, err := protocols.BuildARPRequest(s.cfg.SrcMAC, s.cfg.SrcIPv4Net.IP, ip)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if err := s.ch.Send(frame); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	if s.cfg.ProbeICMPv6 && s.cfg.SrcLinkLocalV6 != nil {
		frame, err := protocols.BuildICMPv6EchoRequest(s.cfg.SrcMAC, s.cfg.SrcLinkLocalV6)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else if err := s.ch.Send(frame); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (s *LANScanner) processFrame(frame capture.Frame, hosts map[string]*Host, timer *ScanTimer) {
	srcIP, ok := protocols.SourceIP(frame)
	if !ok {
		if s.dropLog != nil {
			s.dropLog.Warnf("dropped malformed frame: no decodable source address")
		}
		return
	}
	sweepReply := s.cfg.ProbeICMPv6 && srcIP.To4() == nil && srcIP.IsLinkLocalUnicast()
	if !s.targets[srcIP.String()] && !sweepReply {
		return
	}

	srcMAC := frameSourceMAC(frame)
	if srcMAC == nil {
		if s.dropLog != nil {
			s.dropLog.Warnf("dropped malformed frame: too short for an ethernet header")
		}
		return
	}

	if srcIP.To4() == nil && !s.cfg.ProbeICMPv6 {
		if _, known := hosts[srcMAC.String()]; !known {
			// We only harvest IPv6 addresses for already-known MACs outside
			// a whole-LAN sweep.
			return
		}
	}

	key := srcMAC.String()
	host, exists := hosts[key]
	isNewHost := !exists
	if isNewHost {
		host = &Host{MAC: srcMAC}
		hosts[key] = host
		timer.MarkSeen()
	}

	isNewIP := host.AddIP(srcIP)

	if (isNewHost || isNewIP) && s.dnsTx != nil {
		select {
		case s.dnsTx <- srcIP:
		default:
		}
	}
}

func frameSourceMAC(frame capture.Frame) net.HardwareAddr {
	if len(frame) < 12 {
		return nil
	}
	return net.HardwareAddr(frame[6:12])
}
