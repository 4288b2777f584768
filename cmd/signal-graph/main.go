// Command signal-graph evaluates a graph of stateful signal operators once per
// tick, fed by GPIO lines and multicast datagram sources, and publishes node
// output changes to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/signal-graph/internal/engine"
	"github.com/sweeney/signal-graph/internal/gpio"
	"github.com/sweeney/signal-graph/internal/mqtt"
	"github.com/sweeney/signal-graph/internal/multicast"
	"github.com/sweeney/signal-graph/internal/registry"
	"github.com/sweeney/signal-graph/internal/status"
	"github.com/sweeney/signal-graph/internal/web"
)

func main() {
	graphPath := flag.String("graph", "graph.yaml", "Graph definition file (YAML)")
	tick := flag.Duration("tick", 10*time.Millisecond, "Evaluation tick interval")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", `MQTT broker address ("" logs changes instead)`)
	clientID := flag.String("client-id", "signal-graph", "MQTT client id")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	group := flag.String("group", multicast.DefaultGroup, `Multicast group for datagram sources ("off" disables)`)
	chip := flag.String("gpio-chip", gpio.DefaultChip, "GPIO chip for gpio sources")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	printOperators := flag.Bool("print-operators", false, "Print registered operators and exit")

	flag.Parse()

	if *printOperators {
		printDescriptors(os.Stdout, registry.NewDefault(time.Now))
		return
	}

	cfg := config{
		graphPath: *graphPath,
		tick:      *tick,
		broker:    *broker,
		clientID:  *clientID,
		heartbeat: *heartbeat,
		group:     *group,
		chip:      *chip,
		httpAddr:  *httpAddr,
	}
	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

type config struct {
	graphPath string
	tick      time.Duration
	broker    string
	clientID  string
	heartbeat time.Duration
	group     string
	chip      string
	httpAddr  string
}

func printDescriptors(w io.Writer, reg *registry.Registry) {
	for _, d := range reg.Descriptors() {
		fmt.Fprintf(w, "%-22s %-16s inputs=%d\n", d.ID, d.Label, d.Inputs)
	}
}

func run(cfg config) error {
	if cfg.tick <= 0 {
		return fmt.Errorf("tick must be positive, got %v", cfg.tick)
	}

	g, err := engine.LoadGraph(cfg.graphPath)
	if err != nil {
		return err
	}

	startTime := time.Now()
	eng, err := engine.Build(g, registry.NewDefault(time.Now), startTime)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	// Initialize GPIO
	var reader gpio.Reader
	gpioSources := g.GPIOSources()
	if len(gpioSources) > 0 {
		lines := make([]gpio.Line, len(gpioSources))
		for i, s := range gpioSources {
			lines[i] = gpio.Line{Offset: *s.GPIO, ActiveLow: s.ActiveLow}
		}
		r, err := gpio.NewRealReader(cfg.chip, lines)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer r.Close()
		reader = r
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize multicast sources
	datagrams := make(chan multicast.Datagram, 64)
	if cfg.group != "off" && len(gpioSources) < len(g.Sources) {
		l, err := multicast.Listen(cfg.group, nil)
		if err != nil {
			return fmt.Errorf("init multicast: %w", err)
		}
		defer l.Close()
		go func() {
			if err := l.Run(ctx, datagrams); err != nil {
				log.Printf("multicast: listener stopped: %v", err)
			}
		}()
		log.Printf("multicast: listening on %s", cfg.group)
	}

	// Initialize MQTT
	var publisher mqtt.Publisher = logPublisher{}
	var mqttStatus mqtt.ConnectionStatus
	if cfg.broker != "" {
		p, err := mqtt.NewRealPublisher(cfg.broker, cfg.clientID)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer p.Close()
		publisher = p
		mqttStatus = p
	}

	tracker := status.NewTracker(startTime, status.Config{
		Graph:       cfg.graphPath,
		TickMs:      cfg.tick.Milliseconds(),
		HeartbeatMs: cfg.heartbeat.Milliseconds(),
		Broker:      cfg.broker,
		HTTPAddr:    cfg.httpAddr,
		Group:       cfg.group,
	})
	tracker.Update(eng.Outputs(), eng.ChangeCounts(), eng.Ticks())
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}

	// Publish startup event with full status snapshot
	startupEvent := mqtt.SystemEvent{
		Timestamp:  startTime,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	log.Printf("started: graph=%s nodes=%d sources=%d tick=%v broker=%q heartbeat=%v",
		cfg.graphPath, len(g.Nodes), len(g.Sources), cfg.tick, cfg.broker, cfg.heartbeat)

	ticker := time.NewTicker(cfg.tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(loop{
		engine:      eng,
		reader:      reader,
		gpioSources: gpioSources,
		publisher:   publisher,
		mqttStatus:  mqttStatus,
		tracker:     tracker,
		heartbeat:   cfg.heartbeat,
		now:         time.Now,
	}, ticker.C, datagrams, sigCh)
}

// loop holds the collaborators of runLoop. reader, mqttStatus and tracker may be nil.
type loop struct {
	engine      *engine.Engine
	reader      gpio.Reader
	gpioSources []engine.SourceConfig
	publisher   mqtt.Publisher
	mqttStatus  mqtt.ConnectionStatus
	tracker     *status.Tracker
	heartbeat   time.Duration
	now         func() time.Time
}

func runLoop(l loop, tick <-chan time.Time, datagrams <-chan multicast.Datagram, sig <-chan os.Signal) error {
	unknown := make(map[string]bool)

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: l.now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if l.tracker != nil {
				l.refreshTracker()
				event.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := l.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case d := <-datagrams:
			if !l.engine.SetSource(d.Source, d.Value) && !unknown[d.Source] {
				// Other sources share the group; note each one once.
				unknown[d.Source] = true
				log.Printf("multicast: ignoring undeclared source %q", d.Source)
			}

		case <-tick:
			t := l.now()
			if l.reader != nil {
				// On a read error the gpio sources keep their previous values.
				values, err := l.reader.Read()
				if err != nil {
					log.Printf("gpio read error: %v", err)
				}
				for i, s := range l.gpioSources {
					if i < len(values) {
						l.engine.SetSource(s.ID, values[i])
					}
				}
			}

			for _, c := range l.engine.Step(t) {
				if err := l.publisher.Publish(c); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			// Check for heartbeat
			if hb := l.engine.CheckHeartbeat(t, l.heartbeat); hb != nil {
				log.Printf("heartbeat: uptime=%v ticks=%d", hb.Uptime, hb.Ticks)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
				}
				if l.tracker != nil {
					l.refreshTracker()
					hbEvent.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := l.publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if l.tracker != nil {
				l.refreshTracker()
			}
		}
	}
}

func (l loop) refreshTracker() {
	l.tracker.Update(l.engine.Outputs(), l.engine.ChangeCounts(), l.engine.Ticks())
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

// logPublisher stands in for MQTT when no broker is configured.
type logPublisher struct{}

func (logPublisher) Publish(c engine.Change) error {
	log.Printf("change: %s=%v (%s)", c.NodeID, c.Value, c.Operator)
	return nil
}

func (logPublisher) PublishSystem(e mqtt.SystemEvent) error {
	log.Printf("system: %s %s", e.Event, e.Reason)
	return nil
}

func (logPublisher) Close() error { return nil }
