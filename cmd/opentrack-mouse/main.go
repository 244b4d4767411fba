// opentrack-mouse translates opentrack UDP telemetry into virtual
// mouse motion. Head yaw and pitch move the pointer, the z axis can
// drive the scroll wheel, and dwelling at center can fire a middle
// click.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/digitaltrails/opentrack-opal/internal/config"
	"github.com/digitaltrails/opentrack-opal/internal/emitter"
	"github.com/digitaltrails/opentrack-opal/internal/filter"
	"github.com/digitaltrails/opentrack-opal/internal/logging"
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

func run() error {
	defaultConfig, _ := config.DefaultPath()

	configPath := flag.String("config", defaultConfig, "config file path")
	writeConfig := flag.Bool("write-config", false, "write the effective config and exit")

	scale := flag.Float64("f", 0, "scale factor for head motion")
	wheel := flag.Bool("z", false, "map z motion to the scroll wheel")
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

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "f":
			cfg.Mouse.ScaleFactor = *scale
		case "z":
			cfg.Mouse.EnableWheel = *wheel
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dev, err := uinput.NewMouse(uinput.DefaultPath, "opentrack-mouse")
	if err != nil {
		return fmt.Errorf("create virtual mouse: %w", err)
	}
	defer dev.Close()
	log.Info("virtual mouse registered", "name", dev.Name())

	conn, err := pipeline.Listen(cfg.Network.Addr())
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info("listening for opentrack telemetry", "addr", cfg.Network.Addr(),
		"scale", cfg.Mouse.ScaleFactor, "alpha", cfg.Smoothing.Alpha, "wheel", cfg.Mouse.EnableWheel)

	cond := filter.NewConditioner(cfg.Smoothing.Alpha, filter.CoastExtrapolate, log)
	stats := pipeline.NewStats("mouse")

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

	mouse := emitter.NewMouse(dev, cfg.Mouse.ScaleFactor, cfg.Mouse.EnableWheel, log)
	translator := pipeline.NewMouseTranslator(mouse)

	p := pipeline.New(conn, cond, ac, translator, cfg.Smoothing.Wait(), stats, log, opts)
	return p.Run(ctx)
}
