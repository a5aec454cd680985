package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/sizepeek/internal/config"
	"github.com/1broseidon/sizepeek/internal/daemon"
	"github.com/1broseidon/sizepeek/internal/geometry"
	"github.com/1broseidon/sizepeek/internal/ipc"
	"github.com/1broseidon/sizepeek/internal/logging"
	"github.com/1broseidon/sizepeek/internal/overlay"
	"github.com/1broseidon/sizepeek/internal/platform"
	"github.com/1broseidon/sizepeek/internal/preview"
)

func runDaemon(args []string) int {
	fs := newFlagSet("daemon", "daemon [--path PATH] [--display DISPLAY]", "Start the sizepeek daemon in the foreground.")
	path := fs.String("path", "", "Config file path (default: ~/.config/sizepeek/config.yaml)")
	display := fs.String("display", "", "X display (default: config display, then $DISPLAY)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	cfg := res.Config
	log.Printf("Configuration loaded (renderer: %s, strategy: %s)", cfg.Preview.Renderer, cfg.Preview.Strategy)

	logger, logCloser, err := logging.New(cfg.GetLoggingConfig(), os.Stderr)
	if err != nil {
		log.Printf("Failed to open log file: %v", err)
		return 1
	}
	defer logCloser.Close()

	if err := serve(res, *display, logger); err != nil {
		log.Printf("sizepeek daemon: %v", err)
		return 1
	}
	return 0
}

// serve wires the daemon and blocks until SIGINT or SIGTERM.
func serve(res *config.LoadResult, display string, logger *slog.Logger) error {
	cfg := res.Config
	if display == "" {
		display = cfg.Display
	}

	backend, err := platform.NewLinuxBackendFromDisplay(display)
	if err != nil {
		return fmt.Errorf("connect to display: %w", err)
	}
	defer backend.Disconnect()

	settings, err := cfg.PreviewSettings()
	if err != nil {
		return err
	}
	strategy, err := cfg.Strategy()
	if err != nil {
		return err
	}
	opts, err := cfg.PlacementOptions()
	if err != nil {
		return err
	}

	geo := geometry.NewService(platform.MonitorSource{Backend: backend}, logger.With("component", "geometry"))
	surface := overlay.NewSurface(backend.XUtil(), backend.RootWindow(), overlayStyle(cfg.Overlay), logger.With("component", "overlay"))
	defer surface.Close()

	store := config.NewStore(res.Path)
	coord, err := preview.NewCoordinator(preview.CoordinatorConfig{
		Factory:   overlay.NewFactory(surface, logger.With("component", "renderer")),
		Overlay:   surface,
		Geometry:  geo,
		Settings:  store,
		Renderer:  settings.Renderer,
		Indicator: settings.Indicator,
		Strategy:  strategy,
		Placement: opts,
		Logger:    logger.With("component", "preview"),
	})
	if err != nil {
		return err
	}
	// The file may have changed since it was read above.
	if !coord.LoadFromSettings() {
		logger.Warn("stored preview settings not applied", "error", coord.Err())
	}
	coord.Subscribe(func(e preview.Event) {
		logger.Debug("preview event", "kind", e.Kind.String(), "width", e.Width, "height", e.Height)
	})

	loop := daemon.NewLoop(64, logger.With("component", "loop"))
	hosts := daemon.NewHostSynchronizer(backend, coord, loop, logger.With("component", "hosts"))
	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: 10 * time.Second,
		Logger:   logger.With("component", "reconciler"),
	}, hosts, loop)

	reloader := daemon.NewReloader(store, coord, cfg, logger.With("component", "reload"))
	reload := reloader.Reload

	server, err := ipc.NewServer(ipc.ServerConfig{
		Engine:   coord,
		Hosts:    hosts,
		Geometry: geo,
		Loop:     loop,
		Reload:   reload,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(ctx) })
	g.Go(func() error { return server.Run(ctx) })
	g.Go(func() error { return reconciler.Run(ctx) })
	g.Go(func() error {
		done := make(chan struct{})
		go func() {
			backend.EventLoop()
			close(done)
		}()
		select {
		case <-ctx.Done():
			backend.StopEventLoop()
		case <-done:
			return fmt.Errorf("X event loop exited")
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-hup:
				log.Println("Received SIGHUP, reloading config...")
				loop.Post(func() {
					if err := reload(); err != nil {
						log.Printf("Config reload failed: %v", err)
						return
					}
					log.Println("Config reloaded successfully")
				})
			}
		}
	})

	log.Println("sizepeek daemon started successfully")
	err = g.Wait()

	// The loop has stopped, so the coordinator can be driven from here.
	coord.Cleanup()
	log.Println("Shutting down sizepeek daemon...")
	return err
}

func overlayStyle(o config.OverlayConfig) overlay.Style {
	return overlay.Style{
		Border:          uint32(o.Color),
		Background:      uint32(o.Background),
		Text:            uint32(o.TextColor),
		BorderThickness: o.BorderThickness,
	}
}
