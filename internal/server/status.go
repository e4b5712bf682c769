package server

import (
	"sync"
	"time"

	"github.com/unklstewy/flightwatch/pkg/watcher"
)

// Status keeps the outcome of the most recent polls for the status API.
type Status struct {
	mu       sync.Mutex
	last     *watcher.Result
	lastErr  string
	lastPoll time.Time
	polls    int
	failures int
}

// StatusView is the JSON form of Status.
type StatusView struct {
	LastPoll  time.Time       `json:"last_poll"`
	Polls     int             `json:"polls"`
	Failures  int             `json:"failures"`
	LastError string          `json:"last_error,omitempty"`
	Result    *watcher.Result `json:"result"`
}

// Record stores a poll outcome. It matches the watcher.OnResult signature.
func (s *Status) Record(res watcher.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	s.lastPoll = time.Now().UTC()
	if err != nil {
		s.failures++
		s.lastErr = err.Error()
		return
	}
	s.lastErr = ""
	s.last = &res
}

// View returns a copy safe to serialize.
func (s *Status) View() StatusView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatusView{
		LastPoll:  s.lastPoll,
		Polls:     s.polls,
		Failures:  s.failures,
		LastError: s.lastErr,
		Result:    s.last,
	}
}
