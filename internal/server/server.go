// Package server runs the single-threaded UDP dispatch loop: receive,
// prune, dispatch, reply. Everything that isn't on that critical path —
// metrics, audit — happens on the other side of a non-blocking channel
// owned by its respective package, so neither can stall a request.
package server

import (
	"errors"
	"fmt"
	"net"
	"time"

	"ticketserver/internal/audit"
	"ticketserver/internal/obslog"
	"ticketserver/internal/protocol"
	"ticketserver/internal/reservation"
	"ticketserver/internal/wire"
)

// Server owns the UDP socket and the request handler it dispatches to.
type Server struct {
	conn    *net.UDPConn
	handler *protocol.Handler
}

// Listen binds a UDP socket on INADDR_ANY:port and returns a Server
// ready to Run. Bind failure is treated as fatal startup error by
// callers.
func Listen(port int, handler *protocol.Handler) (*Server, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("server: listen on port %d: %w", port, err)
	}
	return &Server{conn: conn, handler: handler}, nil
}

// Close releases the socket. Best-effort: callers only need the
// attempt, not a guarantee it succeeds.
func (s *Server) Close() error {
	return s.conn.Close()
}

// Run blocks forever, servicing one datagram per iteration. It only
// returns on a fatal socket error: any send failure, or any receive
// failure other than a transient, already-logged one.
func (s *Server) Run() error {
	reqBuf := make([]byte, wire.MaxDatagram)
	respBuf := make([]byte, wire.MaxDatagram)
	var seq uint64

	for {
		n, addr, err := s.conn.ReadFromUDP(reqBuf)
		if err != nil {
			if isTransient(err) {
				obslog.Get().Debug("transient receive error", "error", err)
				continue
			}
			return fmt.Errorf("server: receive: %w", err)
		}
		seq++
		if n == 0 {
			continue
		}

		now := time.Now()
		for _, expired := range s.handler.Store.Prune(now) {
			if s.handler.Metrics != nil {
				s.handler.Metrics.ReservationExpired()
			}
			s.handler.Audit.Record(audEvent(expired, now))
		}

		out, ok := s.handler.Dispatch(reqBuf[:n], now, respBuf)
		if !ok {
			obslog.Request(addr.String(), seq).Debug("dropped request", "bytes", n)
			continue
		}
		if _, err := s.conn.WriteToUDP(out, addr); err != nil {
			return fmt.Errorf("server: send: %w", err)
		}
	}
}

func isTransient(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func audEvent(r *reservation.Reservation, now time.Time) audit.Event {
	return audit.Event{
		Kind:          audit.Expired,
		ReservationID: r.ID,
		EventID:       r.EventID,
		TicketCount:   r.TicketCount,
		At:            now,
	}
}
