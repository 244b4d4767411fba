// Package evdev reads real input devices. It backs the snoop tool,
// which is the quickest way to confirm a virtual device registered by
// this project actually produces the events a game will see.
package evdev

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const byIDDir = "/dev/input/by-id"

// DeviceInfo describes one discovered event device.
type DeviceInfo struct {
	// Name is the stable by-id symlink name.
	Name string
	// Path is the resolved /dev/input/eventN node.
	Path string
}

// ScanDevices lists event devices under /dev/input/by-id, resolving
// each symlink to its event node. Results are sorted by name.
func ScanDevices() ([]DeviceInfo, error) {
	return scanDir(byIDDir)
}

func scanDir(dir string) ([]DeviceInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var devices []DeviceInfo
	for _, entry := range entries {
		if !strings.Contains(entry.Name(), "event") {
			continue
		}
		fullPath := filepath.Join(dir, entry.Name())
		target, err := os.Readlink(fullPath)
		if err != nil {
			continue
		}
		absPath := target
		if !filepath.IsAbs(target) {
			absPath = filepath.Join(dir, target)
		}
		devices = append(devices, DeviceInfo{
			Name: entry.Name(),
			Path: filepath.Clean(absPath),
		})
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices, nil
}
