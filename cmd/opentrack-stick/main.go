// opentrack-stick translates opentrack UDP telemetry into a virtual
// Xbox-style gamepad. Each head axis can feed a stick axis, a hat, or
// a button pair, per the binding table; dwelling at center can pulse
// a snap-center control.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/digitaltrails/opentrack-opal/internal/config"
	"github.com/digitaltrails/opentrack-opal/internal/emitter"
	"github.com/digitaltrails/opentrack-opal/internal/filter"
	"github.com/digitaltrails/opentrack-opal/internal/logging"
	"github.com/digitaltrails/opentrack-opal/internal/mapping"
	"github.com/digitaltrails/opentrack-opal/internal/monitor"
	"github.com/digitaltrails/opentrack-opal/internal/pipeline"
	"github.com/digitaltrails/opentrack-opal/internal/trace"
	"github.com/digitaltrails/opentrack-opal/internal/uinput"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func parseBindings(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	codes := make([]int, 0, len(parts))
	for _, p := range parts {
		code, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("binding table entry %q is not a number", p)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func run() error {
	defaultConfig, _ := config.DefaultPath()

	configPath := flag.String("config", defaultConfig, "config file path")
	writeConfig := flag.Bool("write-config", false, "write the effective config and exit")

	bindings := flag.String("b", "", "binding table, 6 or 7 comma-separated codes")
	scale := flag.Float64("f", 0, "scale factor for head motion")
	deadZone := flag.Float64("dz", 0, "button/hat dead zone in tracking units")
	wait := flag.Float64("w", 0, "seconds to wait for a packet before coasting")
	window := flag.Int("s", 0, "smoothing window size in samples")
	alpha := flag.Float64("q", 0, "smoothing alpha (0..1], lower smooths more")
	zone := flag.Float64("a", 0, "auto-center zone, 0 disables")
	dwell := flag.Float64("t", 0, "auto-center dwell seconds")
	bindIP := flag.String("i", "", "UDP bind address")
	port := flag.Int("p", 0, "UDP port")
	debug := flag.Bool("d", false, "debug logging")

	recordPath := flag.String("record", "", "record the tick trace to a JSONL file")
	monitorOn := flag.Bool("monitor", false, "serve the debug monitor page")
	monitorPort := flag.Int("monitor-port", 0, "monitor port")
	monitorOpen := flag.Bool("monitor-open", false, "open the monitor page in a browser")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	// Stick emulation centers by default: a small zone suits flight
	// and driving games where the view should snap straight ahead.
	if cfg.AutoCenter.Zone == 0 {
		cfg.AutoCenter.Zone = 5.0
	}

	var visitErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "b":
			codes, err := parseBindings(*bindings)
			if err != nil {
				visitErr = err
				return
			}
			cfg.Stick.Bindings = codes
		case "f":
			cfg.Stick.ScaleFactor = *scale
		case "dz":
			cfg.Stick.DeadZone = *deadZone
		case "w":
			cfg.Smoothing.WaitSeconds = *wait
		case "s":
			cfg.Smoothing.Window = *window
		case "q":
			cfg.Smoothing.Alpha = *alpha
		case "a":
			cfg.AutoCenter.Zone = *zone
		case "t":
			cfg.AutoCenter.DwellSeconds = *dwell
		case "i":
			cfg.Network.BindAddress = *bindIP
		case "p":
			cfg.Network.Port = *port
		case "d":
			cfg.Debug = *debug
		case "record":
			cfg.Monitor.RecordPath = *recordPath
		case "monitor":
			cfg.Monitor.Enabled = *monitorOn
		case "monitor-port":
			cfg.Monitor.Port = *monitorPort
		case "monitor-open":
			cfg.Monitor.OpenBrowser = *monitorOpen
		}
	})
	if visitErr != nil {
		return visitErr
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if *writeConfig {
		if *configPath == "" {
			return fmt.Errorf("no config path available")
		}
		if err := config.Save(*configPath, cfg); err != nil {
			return err
		}
		fmt.Println("wrote", *configPath)
		return nil
	}

	log := logging.New(cfg.Debug)

	set, err := mapping.Resolve(cfg.Stick.Bindings, cfg.Stick.ScaleFactor, cfg.Stick.DeadZone)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Games identify the device by this name; an Xbox pad is the most
	// widely recognized.
	dev, err := uinput.NewStick(uinput.DefaultPath, "Microsoft X-Box 360 pad 0")
	if err != nil {
		return fmt.Errorf("create virtual gamepad: %w", err)
	}
	defer dev.Close()
	log.Info("virtual gamepad registered", "name", dev.Name())

	conn, err := pipeline.Listen(cfg.Network.Addr())
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info("listening for opentrack telemetry", "addr", cfg.Network.Addr(),
		"bindings", cfg.Stick.Bindings, "alpha", cfg.Smoothing.Alpha)

	cond := filter.NewConditioner(cfg.Smoothing.Alpha, filter.CoastHold, log)
	stats := pipeline.NewStats("stick")

	var ac *filter.AutoCenter
	if cfg.AutoCenter.Zone > 0 {
		axes, err := cfg.AutoCenter.MonitoredAxes()
		if err != nil {
			return err
		}
		ac = filter.NewAutoCenter(cfg.AutoCenter.Zone, cfg.AutoCenter.Dwell(), axes)
		log.Info("auto-center enabled", "zone", cfg.AutoCenter.Zone, "dwell", cfg.AutoCenter.Dwell())
	}

	var opts pipeline.Options

	if cfg.Monitor.RecordPath != "" {
		rec, err := trace.NewRecorder(cfg.Monitor.RecordPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Warn("close trace", "error", err)
			}
		}()
		opts.Recorder = rec
		log.Info("recording tick trace", "path", cfg.Monitor.RecordPath)
	}

	if cfg.Monitor.Enabled {
		status := func() monitor.Status { return stats.Snapshot(cond.Substituted()) }
		srv := monitor.NewServer(cfg.Monitor.Port, status, log)
		go func() {
			if err := srv.Start(); err != nil {
				log.Warn("monitor server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Warn("stop monitor", "error", err)
			}
		}()
		if cfg.Monitor.OpenBrowser {
			if err := srv.OpenPage(); err != nil {
				log.Warn("open monitor page", "error", err)
			}
		}
		opts.Monitor = srv
	}

	stick := emitter.NewStick(dev, log)
	translator := pipeline.NewStickTranslator(mapping.NewMapper(set), stick)

	p := pipeline.New(conn, cond, ac, translator, cfg.Smoothing.Wait(), stats, log, opts)
	return p.Run(ctx)
}
