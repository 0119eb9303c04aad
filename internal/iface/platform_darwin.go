//go:build darwin

package iface

import (
	"os/exec"
	"strings"
	"sync"
)

// darwinChecker shells out to networksetup once per process and caches the
// result, mirroring the OnceLock-memoized HardwareInfo in the reference
// source's macos_impl module.
type darwinChecker struct{}

func newPlatformChecker() PhysicalityChecker {
	return darwinChecker{}
}

type hardwareInfo struct {
	physical map[string]bool
	wireless map[string]bool
}

var (
	hwInfoOnce sync.Once
	hwInfo     hardwareInfo
)

func getHardwareInfo() hardwareInfo {
	hwInfoOnce.Do(func() {
		hwInfo = hardwareInfo{
			physical: make(map[string]bool),
			wireless: make(map[string]bool),
		}

		out, err := exec.Command("networksetup", "-listallhardwareports").Output()
		if err != nil {
			return
		}
		for _, line := range strings.Split(string(out), "\n") {
			if dev, ok := strings.CutPrefix(line, "Device: "); ok {
				hwInfo.physical[strings.TrimSpace(dev)] = true
			}
		}

		for dev := range hwInfo.physical {
			cmd := exec.Command("networksetup", "-getairportnetwork", dev)
			if err := cmd.Run(); err == nil {
				hwInfo.wireless[dev] = true
			}
		}
	})
	return hwInfo
}

func (darwinChecker) IsPhysical(name string) bool {
	return getHardwareInfo().physical[name]
}

func (darwinChecker) IsWireless(name string) bool {
	return getHardwareInfo().wireless[name]
}
