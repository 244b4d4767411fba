package evdev

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/digitaltrails/opentrack-opal/internal/uinput"
)

// evdev ioctl numbers, _IOC(dir, 'E', nr, size) on x86-64 layout.
const (
	eviocgrab = 0x40044590

	iocRead      = 2
	iocNrName    = 0x06
	iocNrBitBase = 0x20
)

func eviocgname(size int) uintptr {
	return uintptr(iocRead<<30 | size<<16 | 'E'<<8 | iocNrName)
}

func eviocgbit(evType int, size int) uintptr {
	return uintptr(iocRead<<30 | size<<16 | 'E'<<8 | (iocNrBitBase + evType))
}

// Reader wraps an open event device node.
type Reader struct {
	file    *os.File
	grabbed bool
}

// Open opens an event device for reading.
func Open(path string) (*Reader, error) {
	f, err := os.OpenFile(path, syscall.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open device %s: %w", path, err)
	}
	return &Reader{file: f}, nil
}

// Name queries the device's self-reported name.
func (r *Reader) Name() (string, error) {
	buf := make([]byte, 256)
	if err := r.ioctl(eviocgname(len(buf)), uintptr(unsafe.Pointer(&buf[0]))); err != nil {
		return "", fmt.Errorf("query device name: %w", err)
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf), nil
}

// Capabilities returns the event types the device claims, mapped to
// the codes it supports within each type.
func (r *Reader) Capabilities() (map[uint16][]uint16, error) {
	typeBits := make([]byte, (uinput.EvMax+7)/8)
	if err := r.ioctl(eviocgbit(0, len(typeBits)), uintptr(unsafe.Pointer(&typeBits[0]))); err != nil {
		return nil, fmt.Errorf("query event types: %w", err)
	}

	caps := make(map[uint16][]uint16)
	for t := uint16(1); t < uinput.EvMax; t++ {
		if !bitSet(typeBits, t) {
			continue
		}
		codeBits := make([]byte, (codeSpace(t)+7)/8)
		if err := r.ioctl(eviocgbit(int(t), len(codeBits)), uintptr(unsafe.Pointer(&codeBits[0]))); err != nil {
			continue
		}
		var codes []uint16
		for c := uint16(0); c < codeSpace(t); c++ {
			if bitSet(codeBits, c) {
				codes = append(codes, c)
			}
		}
		caps[t] = codes
	}
	return caps, nil
}

// codeSpace bounds the code range per event type.
func codeSpace(t uint16) uint16 {
	switch t {
	case uinput.EvKey:
		return 0x300
	case uinput.EvRel:
		return 0x10
	case uinput.EvAbs:
		return 0x40
	default:
		return 0x20
	}
}

func bitSet(bits []byte, n uint16) bool {
	idx := int(n / 8)
	if idx >= len(bits) {
		return false
	}
	return bits[idx]&(1<<(n%8)) != 0
}

// ReadEvent blocks until one input event arrives.
func (r *Reader) ReadEvent() (uinput.Event, error) {
	var e uinput.Event
	buf := make([]byte, binary.Size(e))
	if _, err := r.file.Read(buf); err != nil {
		return e, err
	}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &e); err != nil {
		return e, err
	}
	return e, nil
}

// Grab takes exclusive hold of the device so no other reader sees its
// events.
func (r *Reader) Grab() error {
	if r.grabbed {
		return nil
	}
	if err := r.ioctl(eviocgrab, 1); err != nil {
		return fmt.Errorf("grab device: %w", err)
	}
	r.grabbed = true
	return nil
}

// Release undoes Grab.
func (r *Reader) Release() error {
	if !r.grabbed {
		return nil
	}
	if err := r.ioctl(eviocgrab, 0); err != nil {
		return fmt.Errorf("release device: %w", err)
	}
	r.grabbed = false
	return nil
}

// Close releases any grab and closes the device node.
func (r *Reader) Close() error {
	_ = r.Release()
	return r.file.Close()
}

func (r *Reader) ioctl(cmd, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, r.file.Fd(), cmd, arg)
	if errno != 0 {
		return errno
	}
	return nil
}
