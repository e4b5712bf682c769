// Package viewer drives the embedded flight viewer.
//
// A Presenter remembers which identifier is on display and only navigates
// its Viewer when the identifier changes.
package viewer

import (
	"log/slog"
	"sync"
)

// Viewer base URLs. The identifier is appended verbatim.
const (
	FlightRadar24URL = "https://www.flightradar24.com/"
	PlaneFinderURL   = "https://planefinder.net/flight/"
)

// BaseURL returns the base URL for a named viewer provider.
// Unknown names fall back to FlightRadar24.
func BaseURL(provider string) string {
	switch provider {
	case "planefinder":
		return PlaneFinderURL
	default:
		return FlightRadar24URL
	}
}

// Viewer is a surface that can be pointed at a URL.
// There is no confirmation channel, so Navigate reports nothing back.
type Viewer interface {
	Navigate(url string)
}

// Func adapts a plain function to the Viewer interface.
type Func func(url string)

// Navigate calls f(url).
func (f Func) Navigate(url string) {
	f(url)
}

// Multi fans one navigation out to several viewers, in order.
type Multi []Viewer

// Navigate forwards url to every viewer.
func (m Multi) Navigate(url string) {
	for _, v := range m {
		v.Navigate(url)
	}
}

// Presenter owns the display state: the identifier last passed to the viewer.
type Presenter struct {
	baseURL string
	viewer  Viewer
	logger  *slog.Logger

	mu        sync.Mutex
	displayed string
	set       bool
}

// NewPresenter creates a presenter that navigates v to baseURL+identifier.
// Nothing is displayed until the first Present call.
func NewPresenter(baseURL string, v Viewer, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Presenter{
		baseURL: baseURL,
		viewer:  v,
		logger:  logger,
	}
}

// Present shows identifier unless it is already on display.
// It returns true if the viewer was navigated. An empty identifier
// points the viewer at the bare base URL (the provider's flight list).
func (p *Presenter) Present(identifier string) bool {
	// Navigate under the lock: the viewer must end on the identifier
	// recorded last when polls overlap.
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.set && p.displayed == identifier {
		return false
	}
	p.displayed = identifier
	p.set = true

	url := p.URL(identifier)
	p.logger.Info("navigating viewer",
		slog.String("identifier", identifier),
		slog.String("url", url))
	p.viewer.Navigate(url)
	return true
}

// Displayed returns the identifier on display. ok is false before the
// first Present call.
func (p *Presenter) Displayed() (identifier string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.displayed, p.set
}

// URL returns the viewer URL for identifier.
func (p *Presenter) URL(identifier string) string {
	return p.baseURL + identifier
}

// BaseURL returns the presenter's base URL.
func (p *Presenter) BaseURL() string {
	return p.baseURL
}
