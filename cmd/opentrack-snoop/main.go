// opentrack-snoop lists input devices and dumps the event stream of a
// chosen one. Point it at a virtual device created by opentrack-mouse
// or opentrack-stick to confirm what a game will actually receive.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/digitaltrails/opentrack-opal/internal/evdev"
	"github.com/digitaltrails/opentrack-opal/internal/logging"
	"github.com/digitaltrails/opentrack-opal/internal/uinput"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	grab := flag.Bool("grab", false, "take exclusive hold of the device while snooping")
	watch := flag.Bool("watch", false, "watch for device hotplug instead of snooping")
	debug := flag.Bool("d", false, "debug logging")
	flag.Parse()

	log := logging.New(*debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *watch {
		return watchHotplug(ctx, log)
	}

	if flag.NArg() == 0 {
		return listDevices()
	}
	return snoop(ctx, flag.Arg(0), *grab)
}

func listDevices() error {
	devices, err := evdev.ScanDevices()
	if err != nil {
		return fmt.Errorf("scan devices: %w", err)
	}
	if len(devices) == 0 {
		fmt.Println("no event devices found under /dev/input/by-id")
		return nil
	}
	for _, d := range devices {
		fmt.Printf("%-60s %s\n", d.Name, d.Path)
	}
	fmt.Println("\nrun again with a device path to snoop its events")
	return nil
}

func watchHotplug(ctx context.Context, log *slog.Logger) error {
	w, err := evdev.NewWatcher(log)
	if err != nil {
		return fmt.Errorf("watch devices: %w", err)
	}
	defer w.Close()

	fmt.Println("watching /dev/input/by-id for hotplug, ctrl-c to stop")

	events := make(chan evdev.WatchEvent)
	go func() {
		for ev := range events {
			for _, d := range ev.Added {
				fmt.Printf("added   %-60s %s\n", d.Name, d.Path)
			}
			for _, d := range ev.Removed {
				fmt.Printf("removed %-60s %s\n", d.Name, d.Path)
			}
		}
	}()

	err = w.Run(ctx, events)
	close(events)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func snoop(ctx context.Context, path string, grab bool) error {
	r, err := evdev.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	name, err := r.Name()
	if err != nil {
		return err
	}
	fmt.Printf("device %s: %q\n", path, name)

	caps, err := r.Capabilities()
	if err != nil {
		return err
	}
	types := make([]int, 0, len(caps))
	for t := range caps {
		types = append(types, int(t))
	}
	sort.Ints(types)
	for _, t := range types {
		fmt.Println(evdev.TypeName(uint16(t)))
		for _, code := range caps[uint16(t)] {
			fmt.Printf("    %s\n", evdev.CodeName(uint16(t), code))
		}
	}

	if grab {
		if err := r.Grab(); err != nil {
			return err
		}
		fmt.Println("device grabbed; events are exclusive to this process")
	}

	// Close on cancel to unblock the read.
	go func() {
		<-ctx.Done()
		r.Close()
	}()

	for {
		e, err := r.ReadEvent()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		switch e.Type {
		case uinput.EvKey, uinput.EvRel, uinput.EvAbs:
			fmt.Printf("%s %s %d\n", evdev.TypeName(e.Type), evdev.CodeName(e.Type, e.Code), e.Value)
		}
	}
}
