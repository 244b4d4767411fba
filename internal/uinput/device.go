// Package uinput registers virtual input devices with the kernel's
// uinput subsystem and writes packed input events to them. Events
// injected here surface at the HID level, below X11/Wayland, so
// applications cannot tell them from a physical mouse or gamepad.
package uinput

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"syscall"
)

// DefaultPath is the kernel uinput control node.
const DefaultPath = "/dev/uinput"

// Writer is the event sink the emitters write to. It is satisfied by
// *Device and by test fakes.
type Writer interface {
	WriteEvents(events []Event) error
	Close() error
}

// AbsAxis declares one absolute axis capability with its range.
type AbsAxis struct {
	Code uint16
	Min  int32
	Max  int32
	Fuzz int32
	Flat int32
}

// Device is a created virtual input device. Create it once at startup
// and Close it on every exit path; destroying the node unregisters the
// device from the kernel.
type Device struct {
	file *os.File
	name string
}

// Caps describes the capabilities to declare at registration time.
type Caps struct {
	Keys []uint16
	Rels []uint16
	Abs  []AbsAxis
}

// Create opens path, declares caps, and registers a new virtual
// device under the given name.
func Create(path, name string, caps Caps) (*Device, error) {
	f, err := os.OpenFile(path, syscall.O_WRONLY|syscall.O_NONBLOCK, 0660)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := setupCaps(f, caps); err != nil {
		_ = f.Close()
		return nil, err
	}

	userDev := UserDev{
		Name: fixedName(name),
		ID: InputID{
			Bustype: BusUsb,
			Vendor:  0x4711,
			Product: 0x0817,
			Version: 1,
		},
	}
	for _, a := range caps.Abs {
		userDev.Absmin[int(a.Code)] = a.Min
		userDev.Absmax[int(a.Code)] = a.Max
		userDev.Absfuzz[int(a.Code)] = a.Fuzz
		userDev.Absflat[int(a.Code)] = a.Flat
	}

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, userDev); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("encode user device: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write user device: %w", err)
	}
	if err := ioctl(f, DevCreate, 0); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create device %q: %w", name, err)
	}

	return &Device{file: f, name: name}, nil
}

func setupCaps(f *os.File, caps Caps) error {
	if len(caps.Keys) > 0 {
		if err := ioctl(f, SetEvBit, uintptr(EvKey)); err != nil {
			return fmt.Errorf("enable EV_KEY: %w", err)
		}
		for _, code := range caps.Keys {
			if err := ioctl(f, SetKeyBit, uintptr(code)); err != nil {
				return fmt.Errorf("enable key 0x%x: %w", code, err)
			}
		}
	}
	if len(caps.Rels) > 0 {
		if err := ioctl(f, SetEvBit, uintptr(EvRel)); err != nil {
			return fmt.Errorf("enable EV_REL: %w", err)
		}
		for _, code := range caps.Rels {
			if err := ioctl(f, SetRelBit, uintptr(code)); err != nil {
				return fmt.Errorf("enable rel axis 0x%x: %w", code, err)
			}
		}
	}
	if len(caps.Abs) > 0 {
		if err := ioctl(f, SetEvBit, uintptr(EvAbs)); err != nil {
			return fmt.Errorf("enable EV_ABS: %w", err)
		}
		for _, a := range caps.Abs {
			if err := ioctl(f, SetAbsBit, uintptr(a.Code)); err != nil {
				return fmt.Errorf("enable abs axis 0x%x: %w", a.Code, err)
			}
		}
	}
	return nil
}

// Name returns the registered device name.
func (d *Device) Name() string {
	return d.name
}

// WriteEvents writes one batch of events to the kernel. Callers append
// a SynEvent to close the batch. A failed write has no degraded mode:
// the caller treats it as fatal.
func (d *Device) WriteEvents(events []Event) error {
	buf := new(bytes.Buffer)
	for _, ev := range events {
		if err := binary.Write(buf, binary.LittleEndian, ev); err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
	}
	if _, err := d.file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write to %q: %w", d.name, err)
	}
	return nil
}

// Close destroys the virtual device and releases the handle.
func (d *Device) Close() error {
	_ = ioctl(d.file, DevDestroy, 0)
	return d.file.Close()
}

func fixedName(name string) (out [MaxNameSize]byte) {
	copy(out[:], name)
	return out
}
