// Package reservation holds the process-lifetime reservation state: the
// live reservations themselves, their expiry ordering, the set of
// cookies currently in use, and the append-only redemption ledger.
// Every operation assumes single-threaded callers; the store has no
// internal locking.
package reservation

import (
	"fmt"
	"sort"
	"time"

	"ticketserver/internal/catalog"
	"ticketserver/internal/mint"
	"ticketserver/internal/ticketcode"
)

// Reservation is the tuple tracked per outstanding or redeemed booking.
type Reservation struct {
	ID          uint32
	EventID     uint32
	TicketCount uint16
	Cookie      [mint.CookieLen]byte
	ExpiresAt   time.Time
}

type expiryEntry struct {
	expiresAt time.Time
	id        uint32
}

// Store is the in-memory reservation table plus its three supporting
// indexes and the redemption ledger.
type Store struct {
	catalog *catalog.Catalog
	codegen *ticketcode.Generator

	reservations map[uint32]*Reservation
	liveIDs      []uint32 // sorted ascending, mirrors the keys of reservations
	expiry       []expiryEntry
	cookies      map[[mint.CookieLen]byte]struct{}
	ledger       map[uint32][]string
}

// New returns an empty store backed by cat for ticket-count bookkeeping
// and codegen for redemption code issuance.
func New(cat *catalog.Catalog, codegen *ticketcode.Generator) *Store {
	return &Store{
		catalog:      cat,
		codegen:      codegen,
		reservations: make(map[uint32]*Reservation),
		cookies:      make(map[[mint.CookieLen]byte]struct{}),
		ledger:       make(map[uint32][]string),
	}
}

// Create mints a reservation for ticketCount tickets against eventID,
// expiring at now+timeout, decrementing the event's remaining tickets.
// Callers must already have validated eventID and ticketCount against
// the event's availability; Create only applies the decrement.
func (s *Store) Create(eventID uint32, ticketCount uint16, now time.Time, timeout time.Duration) (*Reservation, error) {
	id, err := mint.NextReservationID(s.liveIDs)
	if err != nil {
		return nil, fmt.Errorf("reservation: mint id: %w", err)
	}
	cookie, err := mint.NextCookie(s.cookieLive)
	if err != nil {
		return nil, fmt.Errorf("reservation: mint cookie: %w", err)
	}
	if err := s.catalog.Adjust(eventID, -int32(ticketCount)); err != nil {
		return nil, fmt.Errorf("reservation: reserve tickets: %w", err)
	}

	r := &Reservation{
		ID:          id,
		EventID:     eventID,
		TicketCount: ticketCount,
		Cookie:      cookie,
		ExpiresAt:   now.Add(timeout),
	}
	s.reservations[id] = r
	s.insertLiveID(id)
	s.insertExpiry(id, r.ExpiresAt)
	s.cookies[cookie] = struct{}{}
	return r, nil
}

// Lookup returns the reservation with the given id, if one is live.
func (s *Store) Lookup(id uint32) (*Reservation, bool) {
	r, ok := s.reservations[id]
	return r, ok
}

// DisableExpiry removes id from the expiry index without touching the
// reservation itself. Idempotent: a missing or already-disabled id is
// not an error.
func (s *Store) DisableExpiry(id uint32) {
	for i, e := range s.expiry {
		if e.id == id {
			s.expiry = append(s.expiry[:i], s.expiry[i+1:]...)
			return
		}
	}
}

// Prune removes every reservation whose expiry has strictly passed,
// refunding its tickets before the reservation disappears from every
// structure. The expiry index is sorted by expiresAt, so this walks
// from the front and stops at the first entry that has not yet expired.
// It returns the reservations it removed, for callers that report
// expiry as a metrics/audit event.
func (s *Store) Prune(now time.Time) []*Reservation {
	cut := 0
	for cut < len(s.expiry) && s.expiry[cut].expiresAt.Before(now) {
		cut++
	}
	if cut == 0 {
		return nil
	}
	expired := s.expiry[:cut]
	s.expiry = s.expiry[cut:]

	removed := make([]*Reservation, 0, len(expired))
	for _, e := range expired {
		r, ok := s.reservations[e.id]
		if !ok {
			continue
		}
		if err := s.catalog.Adjust(r.EventID, int32(r.TicketCount)); err != nil {
			// The event row is process-lifetime and the decrement at
			// Create time guarantees this refund stays in range; a
			// failure here means the catalog invariant already broke.
			panic(fmt.Sprintf("reservation: refund on expiry: %v", err))
		}
		delete(s.cookies, r.Cookie)
		delete(s.reservations, e.id)
		s.removeLiveID(e.id)
		removed = append(removed, r)
	}
	return removed
}

// IsRedeemed reports whether id already has ticket codes in the ledger.
func (s *Store) IsRedeemed(id uint32) bool {
	_, ok := s.ledger[id]
	return ok
}

// Codes returns the ledger entry for id, if any.
func (s *Store) Codes(id uint32) ([]string, bool) {
	codes, ok := s.ledger[id]
	return codes, ok
}

// Redeem issues count fresh ticket codes for id and records them in the
// ledger. Callers must check IsRedeemed first; Redeem does not guard
// against overwriting an existing entry.
func (s *Store) Redeem(id uint32, count uint16) []string {
	codes := make([]string, count)
	for i := range codes {
		codes[i] = s.codegen.Next()
	}
	s.ledger[id] = codes
	return codes
}

func (s *Store) cookieLive(cookie [mint.CookieLen]byte) bool {
	_, ok := s.cookies[cookie]
	return ok
}

func (s *Store) insertLiveID(id uint32) {
	i := sort.Search(len(s.liveIDs), func(i int) bool { return s.liveIDs[i] >= id })
	s.liveIDs = append(s.liveIDs, 0)
	copy(s.liveIDs[i+1:], s.liveIDs[i:])
	s.liveIDs[i] = id
}

func (s *Store) removeLiveID(id uint32) {
	i := sort.Search(len(s.liveIDs), func(i int) bool { return s.liveIDs[i] >= id })
	if i < len(s.liveIDs) && s.liveIDs[i] == id {
		s.liveIDs = append(s.liveIDs[:i], s.liveIDs[i+1:]...)
	}
}

func (s *Store) insertExpiry(id uint32, expiresAt time.Time) {
	i := sort.Search(len(s.expiry), func(i int) bool { return !s.expiry[i].expiresAt.Before(expiresAt) })
	s.expiry = append(s.expiry, expiryEntry{})
	copy(s.expiry[i+1:], s.expiry[i:])
	s.expiry[i] = expiryEntry{expiresAt: expiresAt, id: id}
}
