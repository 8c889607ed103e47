// Command ticket-server runs the connectionless UDP cinema reservation
// service: it loads a catalog file, binds a UDP socket, and answers
// GET_EVENTS, GET_RESERVATION, and GET_TICKETS requests until killed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ticketserver/internal/audit"
	"ticketserver/internal/catalog"
	"ticketserver/internal/config"
	"ticketserver/internal/metrics"
	"ticketserver/internal/obslog"
	"ticketserver/internal/protocol"
	"ticketserver/internal/reservation"
	"ticketserver/internal/server"
	"ticketserver/internal/ticketcode"
	"time"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	obslog.Init(cfg.LogLevel, cfg.LogFormat)
	log := obslog.Get()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Info("catalog loaded", "events", len(cat.Events()), "path", cfg.CatalogPath)

	var auditSink *audit.Sink
	if cfg.AuditNATSURL != "" || cfg.AuditPostgresDSN != "" {
		auditSink, err = audit.Dial(cfg.AuditNATSURL, cfg.AuditPostgresDSN)
		if err != nil {
			// Audit is a non-authoritative side sink: log and run
			// without it rather than refusing to serve.
			log.Error("audit sink unavailable, continuing without it", "error", err)
			auditSink = nil
		}
	}
	defer auditSink.Close()

	recorder := metrics.NewRecorder()
	defer recorder.Stop()

	metricsCtx, cancelMetrics := context.WithCancel(context.Background())
	defer cancelMetrics()
	go func() {
		if err := metrics.Serve(metricsCtx, cfg.MetricsAddr); err != nil {
			log.Debug("metrics listener stopped", "error", err)
		}
	}()

	store := reservation.New(cat, ticketcode.NewGenerator())
	handler := &protocol.Handler{
		Catalog: cat,
		Store:   store,
		Timeout: time.Duration(cfg.Timeout) * time.Second,
		Metrics: recorder,
		Audit:   auditSink,
	}

	srv, err := server.Listen(cfg.Port, handler)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer srv.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("shutdown signal received, closing socket")
		srv.Close()
		os.Exit(0)
	}()

	log.Info("listening", "port", cfg.Port, "timeout_seconds", cfg.Timeout)
	if err := srv.Run(); err != nil {
		obslog.Fatal("fatal server error", "error", err)
	}
}
