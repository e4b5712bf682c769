// Command flightwatch polls OpenSky for the flight nearest a fixed
// observation point and keeps an embedded flight viewer pointed at it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"
	"golang.org/x/sync/errgroup"

	"github.com/unklstewy/flightwatch/internal/server"
	"github.com/unklstewy/flightwatch/internal/tui"
	"github.com/unklstewy/flightwatch/pkg/config"
	flightlog "github.com/unklstewy/flightwatch/pkg/log"
	"github.com/unklstewy/flightwatch/pkg/opensky"
	"github.com/unklstewy/flightwatch/pkg/selection"
	"github.com/unklstewy/flightwatch/pkg/viewer"
	"github.com/unklstewy/flightwatch/pkg/watcher"
)

const shutdownTimeout = 10 * time.Second

var configPath = flag.String("config", "configs/config.json", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := newLogger(cfg)
	defer lg.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Viewer.Mode {
	case config.ModeTerminal:
		err = runTerminal(ctx, cfg, lg.Logger)
	default:
		err = runWeb(ctx, cfg, lg.Logger)
	}
	if err != nil {
		lg.Error("flightwatch stopped with error", slog.Any("error", err))
		lg.Close()
		os.Exit(1)
	}
}

// newLogger keeps stderr free for the terminal viewer unless a log file
// is configured.
func newLogger(cfg *config.Config) *flightlog.Logger {
	if cfg.Viewer.Mode == config.ModeTerminal && cfg.Log.File == "" {
		return flightlog.NewWriter(io.Discard, cfg.Log.Level)
	}
	return flightlog.New(cfg.Log.Level, cfg.Log.File)
}

func strategy(cfg *config.Config) selection.Strategy {
	if cfg.Viewer.Strategy == config.StrategyLowestAltitude {
		return selection.LowestAltitudeStrategy()
	}
	return selection.NearestStrategy(config.ObservationPoint())
}

func watcherOptions(cfg *config.Config, logger *slog.Logger, onResult func(watcher.Result, error)) []watcher.Option {
	opts := []watcher.Option{
		watcher.WithInterval(config.PollInterval),
		watcher.WithObserver(config.ObservationPoint()),
		watcher.WithLogger(logger.With(slog.String("component", "watcher"))),
		watcher.OnResult(onResult),
	}
	if cfg.Viewer.ExclusiveTicks {
		opts = append(opts, watcher.WithExclusiveTicks())
	}
	return opts
}

// runWeb serves the iframe viewer page and runs the watcher until ctx is
// done or the listener fails.
func runWeb(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	baseURL := viewer.BaseURL(cfg.Viewer.Provider)
	source := opensky.NewClient(config.OpenSkyBaseURL, logger.With(slog.String("component", "opensky")))

	hub := server.NewHub(baseURL, logger.With(slog.String("component", "hub")))
	presenter := viewer.NewPresenter(baseURL, hub, logger)
	status := &server.Status{}
	w := watcher.New(source, strategy(cfg), presenter, watcherOptions(cfg, logger, status.Record)...)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.New(hub, presenter, status, logger).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("viewer listening",
			slog.String("url", "http://"+cfg.Server.Addr()),
			slog.String("provider", cfg.Viewer.Provider),
			slog.String("strategy", cfg.Viewer.Strategy))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		w.Run(ctx)
		return nil
	})

	if cfg.Server.OpenBrowser {
		pageURL := "http://" + cfg.Server.Addr() + "/"
		if err := browser.OpenURL(pageURL); err != nil {
			logger.Warn("could not open browser", slog.String("url", pageURL), slog.Any("error", err))
		}
	}

	return g.Wait()
}

// runTerminal drives the terminal viewer. Quitting the UI stops the watcher.
func runTerminal(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	baseURL := viewer.BaseURL(cfg.Viewer.Provider)
	source := opensky.NewClient(config.OpenSkyBaseURL, logger.With(slog.String("component", "opensky")))

	p := tea.NewProgram(tui.NewModel(baseURL, cfg.Viewer.Provider, config.PollInterval), tea.WithAltScreen())
	presenter := viewer.NewPresenter(baseURL, tui.NewViewer(p), logger)
	w := watcher.New(source, strategy(cfg), presenter, watcherOptions(cfg, logger, tui.Recorder(p))...)

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("terminal viewer: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		p.Quit()
		return nil
	})

	g.Go(func() error {
		w.Run(ctx)
		return nil
	})

	return g.Wait()
}
