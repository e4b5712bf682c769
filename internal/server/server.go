// Package server is the web viewer: a page that embeds the third-party
// flight viewer in an iframe and follows the presenter's navigation over
// a WebSocket, plus a small JSON status API.
package server

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/unklstewy/flightwatch/pkg/viewer"
)

// Server holds the HTTP router and its dependencies
type Server struct {
	router    *chi.Mux
	hub       *Hub
	presenter *viewer.Presenter
	status    *Status
	logger    *slog.Logger
}

// New creates the web viewer server.
func New(hub *Hub, presenter *viewer.Presenter, status *Status, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		router:    chi.NewRouter(),
		hub:       hub,
		presenter: presenter,
		status:    status,
		logger:    logger,
	}
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	// The WebSocket route stays outside the compressed group.
	r.Get("/ws", s.hub.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))

		r.Get("/", s.handleIndex)

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
			r.Get("/status", s.handleStatus)
		})
	})
}

// handleHealth provides a health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIndex serves the viewer page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTemplate.Execute(w, struct {
		URL string
	}{
		URL: s.hub.Current(),
	})
	if err != nil {
		s.logger.Error("rendering viewer page", slog.Any("error", err))
	}
}

// handleStatus reports what is on display and how the last poll went.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	identifier, displayed := s.presenter.Displayed()
	respondJSON(w, http.StatusOK, map[string]any{
		"displayed":  displayed,
		"identifier": identifier,
		"url":        s.hub.Current(),
		"clients":    s.hub.Clients(),
		"poll":       s.status.View(),
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>flightwatch</title>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        html, body { margin: 0; height: 100%; }
        iframe { border: 0; width: 100%; height: 100%; }
    </style>
</head>
<body>
    <iframe id="viewer" src="{{.URL}}"></iframe>
    <script>
    (function () {
        var frame = document.getElementById('viewer');
        function connect() {
            var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
            var ws = new WebSocket(proto + location.host + '/ws');
            ws.onmessage = function (ev) {
                var msg = JSON.parse(ev.data);
                if (msg.url && frame.src !== msg.url) {
                    frame.src = msg.url;
                }
            };
            ws.onclose = function () { setTimeout(connect, 2000); };
        }
        connect();
    })();
    </script>
</body>
</html>
`))
