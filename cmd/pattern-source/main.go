// Command pattern-source replays a value/duration pattern file as a multicast
// datagram source, one datagram per tick.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/signal-graph/internal/multicast"
	"github.com/sweeney/signal-graph/internal/pattern"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [file [source-id]]\n", os.Args[0])
		flag.PrintDefaults()
	}
	tick := flag.Duration("tick", pattern.DefaultTick, "Replay tick interval")
	group := flag.String("group", multicast.DefaultGroup, "Multicast group to send to")
	ttl := flag.Int("ttl", 1, "Multicast TTL")

	flag.Parse()

	file, source := "pattern.txt", "file-source"
	if flag.NArg() > 0 {
		file = flag.Arg(0)
	}
	if flag.NArg() > 1 {
		source = flag.Arg(1)
	}

	if *tick <= 0 {
		log.Fatalf("fatal: tick must be positive, got %v", *tick)
	}

	sender, err := multicast.NewUDPSender(*group, *ttl)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	defer sender.Close()

	log.Printf("started: file=%s source=%s group=%s tick=%v", file, source, *group, *tick)

	ticker := time.NewTicker(*tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	runLoop(pattern.NewReplayer(pattern.FileLoader(file), *tick), sender, source, ticker.C, sigCh)
}

// runLoop emits one datagram per tick until a signal arrives. Load and send
// errors are logged and the loop continues.
func runLoop(r *pattern.Replayer, sender multicast.Sender, source string, tick <-chan time.Time, sig <-chan os.Signal) {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			return

		case <-tick:
			v, err := r.Next()
			if err != nil {
				log.Printf("pattern: %v", err)
				continue
			}
			if err := sender.Send(multicast.FormatPayload(source, v)); err != nil {
				log.Printf("multicast: %v", err)
			}
		}
	}
}
