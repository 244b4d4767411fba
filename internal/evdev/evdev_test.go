package evdev

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitaltrails/opentrack-opal/internal/uinput"
)

func TestScanDirResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	devDir := filepath.Join(dir, "nodes")
	require.NoError(t, os.Mkdir(devDir, 0755))

	for _, node := range []string{"event3", "event7"} {
		require.NoError(t, os.WriteFile(filepath.Join(devDir, node), nil, 0644))
	}
	byID := filepath.Join(dir, "by-id")
	require.NoError(t, os.Mkdir(byID, 0755))

	require.NoError(t, os.Symlink("../nodes/event3", filepath.Join(byID, "usb-TrackHat-event-joystick")))
	require.NoError(t, os.Symlink(filepath.Join(devDir, "event7"), filepath.Join(byID, "usb-Keeb-event-kbd")))
	// Non-event entries are skipped.
	require.NoError(t, os.Symlink("../nodes/event3", filepath.Join(byID, "usb-Keeb-mouse")))

	devices, err := scanDir(byID)
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, "usb-Keeb-event-kbd", devices[0].Name)
	assert.Equal(t, filepath.Join(devDir, "event7"), devices[0].Path)
	assert.Equal(t, "usb-TrackHat-event-joystick", devices[1].Name)
	assert.Equal(t, filepath.Join(devDir, "event3"), devices[1].Path)
}

func TestScanDirMissing(t *testing.T) {
	_, err := scanDir(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestBitSet(t *testing.T) {
	bits := []byte{0b00000101, 0b10000000}
	assert.True(t, bitSet(bits, 0))
	assert.False(t, bitSet(bits, 1))
	assert.True(t, bitSet(bits, 2))
	assert.True(t, bitSet(bits, 15))
	assert.False(t, bitSet(bits, 16))
}

func TestIoctlNumbers(t *testing.T) {
	// Known values from input.h for the x86-64 _IOC layout.
	assert.Equal(t, uintptr(0x81004506), eviocgname(256))
	assert.Equal(t, uintptr(0x80044520), eviocgbit(0, 4))
}

func TestNames(t *testing.T) {
	assert.Equal(t, "KEY", TypeName(uinput.EvKey))
	assert.Equal(t, "EV_0x1a", TypeName(0x1a))
	assert.Equal(t, "BTN_A", CodeName(uinput.EvKey, uinput.BtnA))
	assert.Equal(t, "ABS_HAT0X", CodeName(uinput.EvAbs, uinput.AbsHat0X))
	assert.Equal(t, "REL_WHEEL", CodeName(uinput.EvRel, uinput.RelWheel))
	assert.Equal(t, "SYN_REPORT", CodeName(uinput.EvSyn, uinput.SynReport))
	assert.Equal(t, "0x2ff", CodeName(uinput.EvKey, 0x2ff))
}
