// Package capture wraps raw L2 and L4 sockets in a uniform asynchronous
// channel: a background goroutine reads frames and publishes them into a
// bounded, single-producer/single-consumer queue, dropping the oldest entry
// under backpressure. Grounded on ap.watchd/sampler.go's OpenLive + read
// loop, generalized from a fixed ring topology to one channel per scanner.
package capture

import (
	"errors"
	"sync"
	"time"

	"github.com/google/gopacket/pcap"

	apnet "github.com/hollowpointer/mappr-sub000/ap_common/network"
)

// readDeadline bounds each pcap read so the background loop can observe
// cancellation promptly instead of blocking forever on an idle link.
const readDeadline = 50 * time.Millisecond

// queueDepth is the capacity of the L2 frame queue. A full queue drops its
// oldest entry rather than blocking the capture goroutine: discovery is
// best-effort, and a stalled consumer must never stall the NIC read loop.
const queueDepth = 256

// Frame is one captured Ethernet frame's raw bytes.
type Frame []byte

// L2Channel is a per-interface Ethernet capture/send endpoint.
type L2Channel struct {
	handle *pcap.Handle
	frames chan Frame

	mu     sync.Mutex
	closed bool
}

// OpenL2 opens a live pcap capture on iface and starts its background read
// loop. The caller must call Close when the scanner using it is done.
func OpenL2(ifaceName string) (*L2Channel, error) {
	if err := apnet.WaitForDevice(ifaceName, time.Minute); err != nil {
		return nil, err
	}

	handle, err := pcap.OpenLive(ifaceName, 65536, true, readDeadline)
	if err != nil {
		return nil, err
	}

	ch := &L2Channel{
		handle: handle,
		frames: make(chan Frame, queueDepth),
	}
	go ch.readLoop()
	return ch, nil
}

// Send transmits a fully-built Ethernet frame synchronously.
func (c *L2Channel) Send(frame []byte) error {
	return c.handle.WritePacketData(frame)
}

// Frames returns the channel frames are published on.
func (c *L2Channel) Frames() <-chan Frame {
	return c.frames
}

func (c *L2Channel) readLoop() {
	defer close(c.frames)
	for {
		data, _, err := c.handle.ReadPacketData()
		if err != nil {
			if c.isClosed() {
				return
			}
			if errors.Is(err, pcap.NextErrorTimeoutExpired) {
				continue
			}
			continue
		}

		frame := make(Frame, len(data))
		copy(frame, data)

		select {
		case c.frames <- frame:
		default:
			// Queue full: drop the oldest frame to make room, matching the
			// capture channel's drop-oldest backpressure contract.
			select {
			case <-c.frames:
			default:
			}
			select {
			case c.frames <- frame:
			default:
			}
		}
	}
}

func (c *L2Channel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close stops the read loop and releases the pcap handle.
func (c *L2Channel) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.handle.Close()
}
