/*
 * COPYRIGHT 2018 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

// Package network contains address constants and device-readiness helpers
// shared by the interface, route, and packet-codec layers. The blocking ARP
// request/reply helpers the original package kept alongside these have been
// superseded by the asynchronous capture channel in internal/capture.
package network

import (
	"fmt"
	"net"
	"os"
	"time"
)

// Well known addresses
var (
	MacZero  = net.HardwareAddr([]byte{0, 0, 0, 0, 0, 0})
	MacBcast = net.HardwareAddr([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})

	// AllNodesV6 is the IPv6 all-nodes multicast address ff02::1 used by the
	// LAN scanner's ICMPv6 echo sweep.
	AllNodesV6 = net.IP{0xFF, 0x02, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01}
)

// IsGlobalUnicastV6 reports whether ip is an IPv6 global unicast address per
// RFC 4291 (2000::/3), not the narrower 0x20..=0x3F top-byte check some
// implementations use. Only this predicate is queryable by the hostname
// resolver for IPv6 targets.
func IsGlobalUnicastV6(ip net.IP) bool {
	if ip.To4() != nil {
		return false
	}
	v6 := ip.To16()
	if v6 == nil {
		return false
	}
	return v6[0]&0xE0 == 0x20
}

// WaitForDevice will wait for a network device to reach the 'up' state.
// Returns an error on timeout or if the device doesn't exist
func WaitForDevice(dev string, timeout time.Duration) error {
	fn := "/sys/class/net/" + dev + "/operstate"

	start := time.Now()
	for {
		state, err := os.ReadFile(fn)
		if err == nil && len(state) >= 2 && string(state[0:2]) == "up" {
			break
		}
		if time.Since(start) >= timeout {
			return fmt.Errorf("timeout: %s not online: %s", dev, state)
		}
		time.Sleep(time.Millisecond * 100)
	}
	return nil
}
