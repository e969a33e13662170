package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evlog/forwarder/internal/bookmark"
	"github.com/evlog/forwarder/internal/config"
	"github.com/evlog/forwarder/internal/eventlog/filesource"
	"github.com/evlog/forwarder/internal/forward"
	"github.com/evlog/forwarder/internal/forward/dispatch"
	"github.com/evlog/forwarder/internal/forward/syslog"
	"github.com/evlog/forwarder/internal/forward/transport"
	"github.com/evlog/forwarder/internal/subscribe"
)

func main() {
	configPath := flag.String("config", "agent.yaml", "path to the agent config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop, err := startAgent(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start agent: %v", err)
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	stop()
	log.Println("Agent stopped")
}

func startAgent(ctx context.Context, cfg *config.Config) (func(), error) {
	formatter, err := syslog.New(cfg.Mode, syslog.Options{
		Hostname:       cfg.Hostname,
		AppName:        cfg.AppName,
		FacilityMap:    cfg.FacilityMap,
		CustomTemplate: cfg.CustomTemplate,
	})
	if err != nil {
		return nil, err
	}

	sender, err := transport.New(cfg.Protocol, cfg.Server, cfg.Port)
	if err != nil {
		return nil, err
	}

	queue := forward.NewQueue(cfg.MaxQueue)
	metrics := &forward.Metrics{QueueCapacity: cfg.MaxQueue}
	store := bookmark.NewStore(cfg.BookmarkDir)
	source := filesource.New(cfg.SourceRoot)

	dispatcher := dispatch.NewDispatcher(ctx, queue, formatter, sender, forward.Config{
		MaxQueue:      cfg.MaxQueue,
		SendBatchSize: cfg.SendBatchSize,
		SendInterval:  cfg.SendInterval(),
	}, metrics)
	dispatcher.Start()

	manager := subscribe.NewManager(ctx, source, store, queue, metrics, cfg.Channels)
	manager.Start()

	go metrics.RunReporter(ctx, 30*time.Second)

	log.Printf("Agent started: %d channels, %s to %s:%d, mode %s",
		len(cfg.Channels), cfg.Protocol, cfg.Server, cfg.Port, cfg.Mode)

	stop := func() {
		// Subscriptions stop first so nothing new is enqueued, then the
		// dispatcher finishes its current iteration. The queue is not
		// drained.
		manager.Stop()
		dispatcher.Stop()
		if closer, ok := sender.(io.Closer); ok {
			closer.Close()
		}
	}
	return stop, nil
}
