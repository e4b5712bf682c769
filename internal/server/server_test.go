package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/unklstewy/flightwatch/pkg/viewer"
	"github.com/unklstewy/flightwatch/pkg/watcher"
)

func newTestServer(t *testing.T) (*httptest.Server, *Hub, *viewer.Presenter, *Status) {
	t.Helper()
	hub := NewHub(viewer.FlightRadar24URL, nil)
	presenter := viewer.NewPresenter(viewer.FlightRadar24URL, hub, nil)
	status := &Status{}
	srv := httptest.NewServer(New(hub, presenter, status, nil).Handler())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return srv, hub, presenter, status
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readURL(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg navigateMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read navigation: %v", err)
	}
	return msg.URL
}

func TestHealth(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestIndexEmbedsCurrentURL(t *testing.T) {
	srv, hub, _, _ := newTestServer(t)
	hub.Navigate("https://www.flightradar24.com/SWR123")

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	if !strings.Contains(page, `src="https://www.flightradar24.com/SWR123"`) {
		t.Errorf("Expected iframe to point at the current URL, got:\n%s", page)
	}
	if !strings.Contains(page, "/ws") {
		t.Error("Expected page to connect to /ws")
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Expected text/html, got %q", ct)
	}
}

func TestWebSocketFollowsPresenter(t *testing.T) {
	srv, hub, presenter, _ := newTestServer(t)
	conn := dial(t, srv)

	if got := readURL(t, conn); got != viewer.FlightRadar24URL {
		t.Errorf("Expected initial URL %s, got %s", viewer.FlightRadar24URL, got)
	}

	presenter.Present("LOT3NM")
	if got := readURL(t, conn); got != "https://www.flightradar24.com/LOT3NM" {
		t.Errorf("Expected LOT3NM, got %s", got)
	}

	// Same identifier again: nothing is pushed, so the next message is the change.
	presenter.Present("LOT3NM")
	presenter.Present("")
	if got := readURL(t, conn); got != viewer.FlightRadar24URL {
		t.Errorf("Expected base URL, got %s", got)
	}

	if n := hub.Clients(); n != 1 {
		t.Errorf("Expected 1 client, got %d", n)
	}
}

func TestWebSocketLateJoinerGetsCurrent(t *testing.T) {
	srv, _, presenter, _ := newTestServer(t)
	presenter.Present("SWR123")

	conn := dial(t, srv)
	if got := readURL(t, conn); got != "https://www.flightradar24.com/SWR123" {
		t.Errorf("Expected current URL on connect, got %s", got)
	}
}

func TestHubDropsClosedClients(t *testing.T) {
	srv, hub, _, _ := newTestServer(t)
	conn := dial(t, srv)
	readURL(t, conn)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Closed client was not unregistered")
		}
		hub.Navigate(viewer.FlightRadar24URL)
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStatusAPI(t *testing.T) {
	srv, _, presenter, status := newTestServer(t)
	presenter.Present("SWR123")
	status.Record(watcher.Result{Vectors: 7, Identifier: "SWR123", Navigated: true}, nil)
	status.Record(watcher.Result{}, errors.New("fetch snapshot: timeout"))

	resp, err := http.Get(srv.URL + "/api/v1/status")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Displayed  bool       `json:"displayed"`
		Identifier string     `json:"identifier"`
		URL        string     `json:"url"`
		Clients    int        `json:"clients"`
		Poll       StatusView `json:"poll"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}

	if !body.Displayed || body.Identifier != "SWR123" {
		t.Errorf("Unexpected display state %+v", body)
	}
	if body.URL != "https://www.flightradar24.com/SWR123" {
		t.Errorf("Unexpected URL %s", body.URL)
	}
	if body.Poll.Polls != 2 || body.Poll.Failures != 1 {
		t.Errorf("Expected 2 polls and 1 failure, got %d and %d", body.Poll.Polls, body.Poll.Failures)
	}
	if body.Poll.LastError != "fetch snapshot: timeout" {
		t.Errorf("Unexpected last error %q", body.Poll.LastError)
	}
	if body.Poll.Result == nil || body.Poll.Result.Vectors != 7 {
		t.Errorf("Expected last good result to survive the failure, got %+v", body.Poll.Result)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Unexpected content type %q", resp.Header.Get("Content-Type"))
	}
}

func TestStatusRecoversAfterFailure(t *testing.T) {
	s := &Status{}
	s.Record(watcher.Result{}, errors.New("boom"))
	s.Record(watcher.Result{Vectors: 1}, nil)

	v := s.View()
	if v.LastError != "" {
		t.Errorf("Expected error cleared, got %q", v.LastError)
	}
	if v.Failures != 1 || v.Polls != 2 {
		t.Errorf("Unexpected counters %+v", v)
	}
}
