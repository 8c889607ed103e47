// Package catalog holds the read-only event list loaded at startup and
// the one mutable field each event carries: its remaining ticket count.
package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	// MaxDescriptionLen is the largest description representable on the
	// wire: EVENTS records carry desc_len as a single byte.
	MaxDescriptionLen = 255
	// MaxRemainingTickets bounds remaining_tickets to the wire's u16 field.
	MaxRemainingTickets = 1<<16 - 1
)

// Event is a show with a fixed initial inventory, identified by its
// catalog-insertion ordinal.
type Event struct {
	ID               uint32
	Description      string
	InitialTickets   uint16
	RemainingTickets uint16
}

// Catalog is the immutable, ordered list of events loaded from the
// catalog file. Only RemainingTickets on each entry ever changes after
// Load returns.
type Catalog struct {
	events []Event
}

// Load reads a catalog file of alternating description/ticket-count
// lines and returns the events in file order, first event id 0. A
// trailing unpaired description line is ignored.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	return parse(f)
}

// LoadFromString parses a catalog held in memory, in the same format
// Load reads from disk. It exists for callers (tests, in particular)
// that would otherwise need a throwaway file.
func LoadFromString(text string) (*Catalog, error) {
	return parse(strings.NewReader(text))
}

func parse(r io.Reader) (*Catalog, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var events []Event
	for {
		if !scanner.Scan() {
			break
		}
		description := scanner.Text()

		if !scanner.Scan() {
			// Trailing unpaired description line: ignored.
			break
		}
		countLine := scanner.Text()

		if len(description) == 0 || len(description) > MaxDescriptionLen {
			return nil, fmt.Errorf("catalog: event %d: description length %d out of [1,%d]", len(events), len(description), MaxDescriptionLen)
		}

		count, err := strconv.ParseUint(countLine, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("catalog: event %d: invalid ticket count %q: %w", len(events), countLine, err)
		}

		events = append(events, Event{
			ID:               uint32(len(events)),
			Description:      description,
			InitialTickets:   uint16(count),
			RemainingTickets: uint16(count),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}

	return &Catalog{events: events}, nil
}

// Get returns the event with the given id, if any.
func (c *Catalog) Get(id uint32) (Event, bool) {
	if id >= uint32(len(c.events)) {
		return Event{}, false
	}
	return c.events[id], true
}

// Events returns the catalog in ascending id (file) order. Callers must
// not mutate the returned slice.
func (c *Catalog) Events() []Event {
	return c.events
}

// Adjust changes event id's remaining ticket count by delta, keeping it
// within [0, initial_tickets]. It reports an error, and leaves the count
// unchanged, if id does not exist or the adjustment would leave the
// count outside that range.
func (c *Catalog) Adjust(id uint32, delta int32) error {
	if id >= uint32(len(c.events)) {
		return fmt.Errorf("catalog: unknown event %d", id)
	}
	e := &c.events[id]
	next := int32(e.RemainingTickets) + delta
	if next < 0 || next > int32(e.InitialTickets) {
		return fmt.Errorf("catalog: event %d: adjustment %d would move remaining tickets (%d) outside [0,%d]", id, delta, e.RemainingTickets, e.InitialTickets)
	}
	e.RemainingTickets = uint16(next)
	return nil
}
