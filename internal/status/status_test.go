package status

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{TickMs: 10, Broker: "tcp://localhost:1883", HTTPAddr: ":8080"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.TickMs != 10 {
		t.Errorf("Config.TickMs: got %d, want 10", snap.Config.TickMs)
	}
	if snap.Config.HTTPAddr != ":8080" {
		t.Errorf("Config.HTTPAddr: got %q, want %q", snap.Config.HTTPAddr, ":8080")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
	if snap.Outputs != nil {
		t.Error("expected no outputs initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(map[string]bool{"latch": true, "pulse": false}, map[string]int{"latch": 3}, 42)

	snap := tr.Snapshot()
	if diff := cmp.Diff(map[string]bool{"latch": true, "pulse": false}, snap.Outputs); diff != "" {
		t.Errorf("outputs mismatch (-want +got):\n%s", diff)
	}
	if snap.Counts["latch"] != 3 {
		t.Errorf("Counts[latch]: got %d, want 3", snap.Counts["latch"])
	}
	if snap.Ticks != 42 {
		t.Errorf("Ticks: got %d, want 42", snap.Ticks)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewTracker(start, Config{})
	tr.now = func() time.Time { return start.Add(90 * time.Second) }

	if got := tr.Snapshot().Uptime(); got != 90*time.Second {
		t.Errorf("Uptime: got %v, want 90s", got)
	}
}

func testSnapshot() Snapshot {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return Snapshot{
		Outputs:       map[string]bool{"latch": true},
		Counts:        map[string]int{"latch": 1},
		Ticks:         500,
		StartTime:     start,
		Now:           start.Add(5*time.Second + 700*time.Millisecond),
		MQTTConnected: true,
		Config: Config{
			Graph:       "graph.yaml",
			TickMs:      10,
			HeartbeatMs: 900000,
			Broker:      "tcp://localhost:1883",
			HTTPAddr:    ":8080",
			Group:       "224.0.0.114:7070",
		},
	}
}

func TestFormatJSON(t *testing.T) {
	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(testSnapshot()), &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if !sj.Status.Nodes["latch"] {
		t.Error("Nodes[latch]: got false, want true")
	}
	if sj.Status.ChangeCounts["latch"] != 1 {
		t.Errorf("ChangeCounts[latch]: got %d, want 1", sj.Status.ChangeCounts["latch"])
	}
	if sj.Status.UptimeSeconds != 5 {
		t.Errorf("UptimeSeconds: got %d, want 5", sj.Status.UptimeSeconds)
	}
	if sj.Status.StartTime != "2026-01-01T00:00:00Z" {
		t.Errorf("StartTime: got %q", sj.Status.StartTime)
	}
	if !sj.Status.MQTT.Connected || sj.Status.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("MQTT: got %+v", sj.Status.MQTT)
	}
	if sj.Status.Config.Group != "224.0.0.114:7070" {
		t.Errorf("Config.Group: got %q", sj.Status.Config.Group)
	}
	if sj.Status.Event != "" {
		t.Errorf("Event: got %q, want empty", sj.Status.Event)
	}
}

func TestFormatJSONEmptyMaps(t *testing.T) {
	data := FormatJSON(Snapshot{})
	if !strings.Contains(string(data), `"nodes": {}`) {
		t.Errorf("expected empty nodes object, got %s", data)
	}
	if !strings.Contains(string(data), `"change_counts": {}`) {
		t.Errorf("expected empty change_counts object, got %s", data)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	data := FormatStatusEvent(testSnapshot(), "SHUTDOWN", "SIGTERM")

	var sj StatusJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if sj.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", sj.Status.Event)
	}
	if sj.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", sj.Status.Reason)
	}
	if strings.Contains(string(data), "\n") {
		t.Error("event payload should be compact")
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	data := FormatStatusEvent(testSnapshot(), "STARTUP", "")
	if strings.Contains(string(data), `"reason"`) {
		t.Errorf("expected no reason field, got %s", data)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Update(map[string]bool{"n": j%2 == 0}, map[string]int{"n": j}, uint64(j))
				tr.SetMQTTConnected(j%2 == 0)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snap := tr.Snapshot()
				_ = FormatJSON(snap)
			}
		}()
	}
	wg.Wait()
}
