// Package metrics exposes the server's Prometheus instrumentation. The
// UDP dispatch loop never talks to Prometheus directly — it posts to a
// buffered channel owned by this package so a stalled metrics listener
// can never back-pressure request handling.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// eventKind identifies the class of event recorded through the async
// channel.
type eventKind int

const (
	eventRequest eventKind = iota
	eventBadRequest
	eventReservationCreated
	eventReservationRedeemed
	eventReservationExpired
	eventTicketsIssued
)

type event struct {
	kind   eventKind
	opcode uint8
	count  int
}

// queueCapacity bounds how many unconsumed events can pile up before
// new ones are dropped rather than blocking the dispatch loop.
const queueCapacity = 4096

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ticketserver_requests_total",
		Help: "Requests accepted and dispatched, by opcode.",
	}, []string{"opcode"})

	badRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ticketserver_bad_requests_total",
		Help: "Semantic rejections answered with BAD_REQUEST, by opcode.",
	}, []string{"opcode"})

	reservationsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ticketserver_reservations_created_total",
		Help: "Reservations successfully created.",
	})

	reservationsRedeemedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ticketserver_reservations_redeemed_total",
		Help: "Reservations redeemed for the first time.",
	})

	reservationsExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ticketserver_reservations_expired_total",
		Help: "Reservations pruned after their timeout elapsed.",
	})

	ticketsIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ticketserver_tickets_issued_total",
		Help: "Individual ticket codes issued across all redemptions.",
	})

	reservationsLive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ticketserver_reservations_live",
		Help: "Reservations currently tracked by the store (pending or redeemed, not yet pruned).",
	})
)

func init() {
	prometheus.MustRegister(
		requestsTotal,
		badRequestsTotal,
		reservationsCreatedTotal,
		reservationsRedeemedTotal,
		reservationsExpiredTotal,
		ticketsIssuedTotal,
		reservationsLive,
	)
}

// Recorder decouples the hot dispatch path from Prometheus: Record
// enqueues and returns immediately, and a background goroutine folds
// events into the collectors above.
type Recorder struct {
	events chan event
}

// NewRecorder starts the background consumer and returns a Recorder
// ready to use. Call Stop to drain and terminate it.
func NewRecorder() *Recorder {
	r := &Recorder{events: make(chan event, queueCapacity)}
	go r.run()
	return r
}

func (r *Recorder) run() {
	for e := range r.events {
		switch e.kind {
		case eventRequest:
			requestsTotal.WithLabelValues(opcodeLabel(e.opcode)).Inc()
		case eventBadRequest:
			badRequestsTotal.WithLabelValues(opcodeLabel(e.opcode)).Inc()
		case eventReservationCreated:
			reservationsCreatedTotal.Inc()
			reservationsLive.Inc()
		case eventReservationRedeemed:
			reservationsRedeemedTotal.Inc()
		case eventReservationExpired:
			reservationsExpiredTotal.Inc()
			reservationsLive.Dec()
		case eventTicketsIssued:
			ticketsIssuedTotal.Add(float64(e.count))
		}
	}
}

// Stop closes the event channel, letting the consumer goroutine drain
// and exit.
func (r *Recorder) Stop() {
	close(r.events)
}

func (r *Recorder) post(e event) {
	select {
	case r.events <- e:
	default:
		// Queue full: drop the sample rather than stall the caller.
	}
}

func (r *Recorder) RequestAccepted(opcode uint8)    { r.post(event{kind: eventRequest, opcode: opcode}) }
func (r *Recorder) BadRequest(opcode uint8)         { r.post(event{kind: eventBadRequest, opcode: opcode}) }
func (r *Recorder) ReservationCreated()             { r.post(event{kind: eventReservationCreated}) }
func (r *Recorder) ReservationRedeemed()            { r.post(event{kind: eventReservationRedeemed}) }
func (r *Recorder) ReservationExpired()             { r.post(event{kind: eventReservationExpired}) }
func (r *Recorder) TicketsIssued(count int)         { r.post(event{kind: eventTicketsIssued, count: count}) }

func opcodeLabel(opcode uint8) string {
	switch opcode {
	case 1:
		return "get_events"
	case 3:
		return "get_reservation"
	case 5:
		return "get_tickets"
	default:
		return "unknown"
	}
}

// Serve starts the side HTTP listener exposing /metrics and /healthz
// until ctx is canceled. An empty addr disables the listener: Serve
// binds nothing and returns nil. It runs independently of the UDP
// socket: a failure here never affects request dispatch.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errc:
		return err
	}
}
