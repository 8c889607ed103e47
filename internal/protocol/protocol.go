// Package protocol implements the request handlers for the three
// client-facing opcodes, translating between the wire codec and the
// catalog/reservation state.
package protocol

import (
	"time"

	"ticketserver/internal/audit"
	"ticketserver/internal/catalog"
	"ticketserver/internal/metrics"
	"ticketserver/internal/mint"
	"ticketserver/internal/reservation"
	"ticketserver/internal/wire"
)

// Opcodes, per the wire format.
const (
	OpGetEvents      = 1
	OpGetReservation = 3
	OpGetTickets     = 5

	OpEvents      = 2
	OpReservation = 4
	OpTickets     = 6
	OpBadRequest  = 255
)

// Exact request lengths, including the opcode byte.
const (
	lenGetEvents      = 1
	lenGetReservation = 1 + 4 + 2
	lenGetTickets     = 1 + 4 + mint.CookieLen
)

// maxTicketsPerReservation bounds a single GET_RESERVATION regardless
// of how many tickets remain for the event.
const maxTicketsPerReservation = 9357

// Handler binds the catalog and reservation store a dispatcher needs to
// answer every opcode, plus the async metrics and audit sinks it
// reports outcomes to.
type Handler struct {
	Catalog *catalog.Catalog
	Store   *reservation.Store
	Timeout time.Duration
	Metrics *metrics.Recorder
	Audit   *audit.Sink
}

// Dispatch parses req (a full received datagram) and appends the
// response, if any, into resp[:0]. It returns the response slice and
// whether a response should be sent at all — false means "drop silently",
// matching malformed or unrecognized-opcode requests.
func (h *Handler) Dispatch(req []byte, now time.Time, resp []byte) ([]byte, bool) {
	if len(req) == 0 {
		return resp, false
	}
	opcode := req[0]
	var out []byte
	var ok bool
	switch opcode {
	case OpGetEvents:
		out, ok = h.handleGetEvents(req, resp)
	case OpGetReservation:
		out, ok = h.handleGetReservation(req, resp)
	case OpGetTickets:
		out, ok = h.handleGetTickets(req, now, resp)
	default:
		return resp, false
	}
	if ok && h.Metrics != nil {
		h.Metrics.RequestAccepted(opcode)
		if len(out) > 0 && out[0] == OpBadRequest {
			h.Metrics.BadRequest(opcode)
		}
	}
	return out, ok
}

func (h *Handler) handleGetEvents(req, resp []byte) ([]byte, bool) {
	if len(req) != lenGetEvents {
		return resp, false
	}
	w := wire.NewWriter(resp)
	w.WriteUint8(OpEvents)
	for _, ev := range h.Catalog.Events() {
		record := 4 + 2 + 1 + len(ev.Description)
		if w.WouldExceed(record) {
			break
		}
		w.WriteUint32(ev.ID)
		w.WriteUint16(ev.RemainingTickets)
		w.WriteUint8(uint8(len(ev.Description)))
		w.WriteBytes([]byte(ev.Description))
	}
	return w.Bytes(), true
}

func (h *Handler) handleGetReservation(req, resp []byte) ([]byte, bool) {
	if len(req) != lenGetReservation {
		return resp, false
	}
	r := wire.NewReader(req)
	eventID, _ := r.ReadUint32(1)
	ticketCount, _ := r.ReadUint16(5)

	ev, ok := h.Catalog.Get(eventID)
	if !ok || ticketCount < 1 || ticketCount > maxTicketsPerReservation || ticketCount > ev.RemainingTickets {
		return badRequest(resp, eventID), true
	}

	now := time.Now()
	res, err := h.Store.Create(eventID, ticketCount, now, h.Timeout)
	if err != nil {
		return badRequest(resp, eventID), true
	}
	if h.Metrics != nil {
		h.Metrics.ReservationCreated()
	}
	h.Audit.Record(audit.Event{
		Kind:          audit.Created,
		ReservationID: res.ID,
		EventID:       res.EventID,
		TicketCount:   res.TicketCount,
		At:            now,
	})

	w := wire.NewWriter(resp)
	w.WriteUint8(OpReservation)
	w.WriteUint32(res.ID)
	w.WriteUint32(res.EventID)
	w.WriteUint16(res.TicketCount)
	w.WriteBytes(res.Cookie[:])
	w.WriteUint64(uint64(res.ExpiresAt.Unix()))
	return w.Bytes(), true
}

func (h *Handler) handleGetTickets(req []byte, now time.Time, resp []byte) ([]byte, bool) {
	if len(req) != lenGetTickets {
		return resp, false
	}
	r := wire.NewReader(req)
	reservationID, _ := r.ReadUint32(1)
	cookieBytes, _ := r.ReadBytes(5, mint.CookieLen)

	res, ok := h.Store.Lookup(reservationID)
	if !ok || string(res.Cookie[:]) != string(cookieBytes) {
		return badRequest(resp, reservationID), true
	}

	codes, redeemed := h.Store.Codes(reservationID)
	if !redeemed {
		codes = h.Store.Redeem(reservationID, res.TicketCount)
		h.Store.DisableExpiry(reservationID)
		if h.Metrics != nil {
			h.Metrics.ReservationRedeemed()
			h.Metrics.TicketsIssued(len(codes))
		}
		h.Audit.Record(audit.Event{
			Kind:          audit.Redeemed,
			ReservationID: reservationID,
			EventID:       res.EventID,
			TicketCount:   res.TicketCount,
			At:            now,
		})
	}

	w := wire.NewWriter(resp)
	w.WriteUint8(OpTickets)
	w.WriteUint32(reservationID)
	w.WriteUint16(res.TicketCount)
	for _, code := range codes {
		w.WriteBytes([]byte(code))
	}
	return w.Bytes(), true
}

func badRequest(resp []byte, rejectedID uint32) []byte {
	w := wire.NewWriter(resp)
	w.WriteUint8(OpBadRequest)
	w.WriteUint32(rejectedID)
	return w.Bytes()
}
