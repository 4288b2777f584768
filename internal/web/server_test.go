package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sweeney/signal-graph/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Graph:       "graph.yaml",
		TickMs:      10,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":8080",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(map[string]bool{"latch": true, "pulse": false}, map[string]int{"latch": 5}, 1000)
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if !sj.Status.Nodes["latch"] {
		t.Error("Nodes[latch]: got false, want true")
	}
	if sj.Status.Nodes["pulse"] {
		t.Error("Nodes[pulse]: got true, want false")
	}
	if sj.Status.ChangeCounts["latch"] != 5 {
		t.Errorf("ChangeCounts[latch]: got %d, want 5", sj.Status.ChangeCounts["latch"])
	}
	if sj.Status.Ticks != 1000 {
		t.Errorf("Ticks: got %d, want 1000", sj.Status.Ticks)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Config.Graph != "graph.yaml" {
		t.Errorf("Config.Graph: got %q", sj.Status.Config.Graph)
	}
}

func TestRootServesJSON(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
}

func TestNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/nope", "/nodes/", "/nodes/ghost"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != 404 {
			t.Errorf("GET %s: got %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestNodeEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(map[string]bool{"latch": true, "pulse": false}, nil, 1)

	tests := map[string]string{
		"latch": "true\n",
		"pulse": "false\n",
	}
	for id, want := range tests {
		resp, err := http.Get(ts.URL + "/nodes/" + id)
		if err != nil {
			t.Fatalf("GET /nodes/%s: %v", id, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != 200 {
			t.Errorf("%s: status got %d, want 200", id, resp.StatusCode)
		}
		if string(body) != want {
			t.Errorf("%s: body got %q, want %q", id, body, want)
		}
	}
}
