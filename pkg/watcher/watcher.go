// Package watcher runs the fetch → select → format → present cycle on a timer.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unklstewy/flightwatch/pkg/coordinates"
	"github.com/unklstewy/flightwatch/pkg/opensky"
	"github.com/unklstewy/flightwatch/pkg/selection"
	"github.com/unklstewy/flightwatch/pkg/viewer"
)

// DefaultInterval is the time between polls.
const DefaultInterval = 10 * time.Second

// Result describes the outcome of one successful poll.
type Result struct {
	// Time is when the poll finished
	Time time.Time `json:"time"`

	// SnapshotTime is the provider's timestamp for the state vectors (unix seconds)
	SnapshotTime int64 `json:"snapshot_time"`

	// Vectors is the number of state vectors in the snapshot
	Vectors int `json:"vectors"`

	// Selected is the flight of interest, nil when nothing qualified
	Selected *opensky.StateVector `json:"selected"`

	// Identifier is the formatted callsign handed to the presenter
	Identifier string `json:"identifier"`

	// Navigated is true if the viewer was pointed somewhere new
	Navigated bool `json:"navigated"`

	// DistanceNM and Bearing locate Selected relative to the observer.
	// Zero when there is no observer, no selection or no position.
	DistanceNM float64 `json:"distance_nm"`
	Bearing    float64 `json:"bearing"`
}

// Watcher is the long-lived orchestrator. Construct it once with New and
// start it with Run.
type Watcher struct {
	source    opensky.Source
	strategy  selection.Strategy
	presenter *viewer.Presenter

	observer  *coordinates.ObservationPoint
	interval  time.Duration
	exclusive bool
	onResult  func(Result, error)
	logger    *slog.Logger

	inFlight atomic.Bool
	wg       sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the poll interval (default 10s).
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithExclusiveTicks skips a tick while the previous poll is still in
// flight. Without it, a slow fetch and the next tick run concurrently.
func WithExclusiveTicks() Option {
	return func(w *Watcher) {
		w.exclusive = true
	}
}

// WithObserver enables distance and bearing reporting in Results.
func WithObserver(p coordinates.ObservationPoint) Option {
	return func(w *Watcher) {
		w.observer = &p
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// OnResult registers a callback invoked after every poll Run performs,
// with either a Result or the error that ended the poll.
func OnResult(fn func(Result, error)) Option {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

// New creates a Watcher.
func New(source opensky.Source, strategy selection.Strategy, presenter *viewer.Presenter, opts ...Option) *Watcher {
	w := &Watcher{
		source:    source,
		strategy:  strategy,
		presenter: presenter,
		interval:  DefaultInterval,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Poll runs the pipeline once. If the fetch fails, nothing else runs and
// the presenter's display state is left untouched.
func (w *Watcher) Poll(ctx context.Context) (Result, error) {
	snapshot, err := w.source.FetchSnapshot(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch snapshot: %w", err)
	}

	selected := w.strategy(snapshot.States)
	identifier := selection.FormatIdentifier(selected)
	navigated := w.presenter.Present(identifier)

	res := Result{
		Time:         time.Now().UTC(),
		SnapshotTime: snapshot.Time,
		Vectors:      len(snapshot.States),
		Selected:     selected,
		Identifier:   identifier,
		Navigated:    navigated,
	}
	if selected != nil && w.observer != nil {
		if lat, lon, ok := selected.Position(); ok {
			pos := coordinates.Geographic{Latitude: lat, Longitude: lon}
			res.DistanceNM = coordinates.DistanceNauticalMiles(w.observer.Location, pos)
			res.Bearing = coordinates.Bearing(w.observer.Location, pos)
		}
	}

	if selected == nil {
		w.logger.Debug("no flight of interest", slog.Int("vectors", res.Vectors))
	} else {
		w.logger.Debug("flight of interest",
			slog.String("icao24", selected.ICAO24),
			slog.String("callsign", identifier),
			slog.Float64("distance_nm", res.DistanceNM),
			slog.Float64("bearing", res.Bearing))
	}

	return res, nil
}

// Run polls immediately and then once per interval until ctx is done.
// Each tick runs on its own goroutine. Run returns after ctx is done and
// every started poll has finished.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("watcher started",
		slog.Duration("interval", w.interval),
		slog.Bool("exclusive_ticks", w.exclusive))

	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.logger.Info("watcher stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	if w.exclusive && !w.inFlight.CompareAndSwap(false, true) {
		w.logger.Warn("previous poll still running, skipping tick")
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if w.exclusive {
			defer w.inFlight.Store(false)
		}

		res, err := w.Poll(ctx)
		if err != nil {
			w.logger.Error("poll failed", slog.Any("error", err))
		}
		if w.onResult != nil {
			w.onResult(res, err)
		}
	}()
}
