// Package audit publishes best-effort lifecycle events for reservations
// to NATS and, optionally, appends them to a write-only Postgres table
// for offline reporting. Neither sink is ever read back by the server:
// the reservation store in internal/reservation remains the sole
// authority over live state, so an audit outage never affects request
// handling.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"

	"ticketserver/internal/obslog"
)

// Kind names the lifecycle event being recorded.
type Kind string

const (
	Created  Kind = "reservation.created"
	Redeemed Kind = "reservation.redeemed"
	Expired  Kind = "reservation.expired"
)

// Event is the payload published for every lifecycle transition.
type Event struct {
	Kind          Kind      `json:"kind"`
	ReservationID uint32    `json:"reservation_id"`
	EventID       uint32    `json:"event_id"`
	TicketCount   uint16    `json:"ticket_count"`
	At            time.Time `json:"at"`
}

// natsSubject is the wire subject events publish under; kind is
// appended so subscribers can filter with plain NATS subject wildcards.
const natsSubject = "ticketserver.reservation"

// queueCapacity bounds the number of unpublished events the sink
// will hold before dropping new ones rather than blocking the caller.
const queueCapacity = 4096

// Sink publishes audit events asynchronously. A nil NATS connection or
// nil database disables the corresponding leg without affecting the
// other; a zero-value Sink (both nil) makes Record a cheap no-op.
type Sink struct {
	nc     *nats.Conn
	db     *sql.DB
	events chan Event
}

// Dial connects the optional NATS and Postgres legs. An empty natsURL
// or postgresDSN leaves that leg disabled; connection failures are
// returned so the caller can decide whether a missing audit sink is
// fatal for their deployment; nothing in this package requires it to be.
func Dial(natsURL, postgresDSN string) (*Sink, error) {
	s := &Sink{events: make(chan Event, queueCapacity)}

	if natsURL != "" {
		nc, err := nats.Connect(natsURL, nats.Name("ticketserver"))
		if err != nil {
			return nil, fmt.Errorf("audit: connect nats: %w", err)
		}
		s.nc = nc
	}

	if postgresDSN != "" {
		db, err := sql.Open("postgres", postgresDSN)
		if err != nil {
			return nil, fmt.Errorf("audit: open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("audit: ping postgres: %w", err)
		}
		if _, err := db.Exec(createTableSQL); err != nil {
			db.Close()
			return nil, fmt.Errorf("audit: create table: %w", err)
		}
		s.db = db
	}

	go s.run()
	return s, nil
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS ticket_sales (
	id SERIAL PRIMARY KEY,
	kind TEXT NOT NULL,
	reservation_id BIGINT NOT NULL,
	event_id BIGINT NOT NULL,
	ticket_count INTEGER NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
)`

// Record enqueues ev for publication. It never blocks the caller: a
// full queue silently drops the sample.
func (s *Sink) Record(ev Event) {
	if s == nil {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

func (s *Sink) run() {
	for ev := range s.events {
		if s.nc != nil {
			s.publishNATS(ev)
		}
		if s.db != nil {
			s.writePostgres(ev)
		}
	}
}

func (s *Sink) publishNATS(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		obslog.Get().Error("audit: marshal event", "error", err, "kind", ev.Kind)
		return
	}
	subject := natsSubject + "." + string(ev.Kind)
	if err := s.nc.Publish(subject, payload); err != nil {
		// Best-effort: log and move on, matching the fire-and-forget
		// treatment the rest of the audit trail gets.
		obslog.Get().Error("audit: publish nats event", "error", err, "subject", subject)
	}
}

func (s *Sink) writePostgres(ev Event) {
	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO ticket_sales (kind, reservation_id, event_id, ticket_count, occurred_at) VALUES ($1, $2, $3, $4, $5)`,
		string(ev.Kind), ev.ReservationID, ev.EventID, ev.TicketCount, ev.At)
	if err != nil {
		obslog.Get().Error("audit: write postgres event", "error", err, "kind", ev.Kind)
	}
}

// Close closes the event queue and releases both sinks. It does not wait
// for the publishing goroutine to finish the queue: events still queued
// when Close runs may not be published. A nil Sink closes cleanly as a
// no-op.
func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	close(s.events)
	if s.nc != nil {
		s.nc.Drain()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
