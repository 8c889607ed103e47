package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderIncrementsCounters(t *testing.T) {
	r := NewRecorder()
	defer r.Stop()

	r.RequestAccepted(1)
	r.ReservationCreated()
	r.ReservationRedeemed()
	r.TicketsIssued(5)
	r.ReservationExpired()
	r.BadRequest(3)

	// The consumer goroutine drains asynchronously; give it a moment.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if testutil.ToFloat64(ticketsIssuedTotal) >= 5 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	assert.GreaterOrEqual(t, testutil.ToFloat64(requestsTotal.WithLabelValues("get_events")), float64(1))
	assert.GreaterOrEqual(t, testutil.ToFloat64(badRequestsTotal.WithLabelValues("get_reservation")), float64(1))
	assert.GreaterOrEqual(t, testutil.ToFloat64(reservationsCreatedTotal), float64(1))
	assert.GreaterOrEqual(t, testutil.ToFloat64(reservationsRedeemedTotal), float64(1))
	assert.GreaterOrEqual(t, testutil.ToFloat64(ticketsIssuedTotal), float64(5))
}

func TestOpcodeLabel(t *testing.T) {
	assert.Equal(t, "get_events", opcodeLabel(1))
	assert.Equal(t, "get_reservation", opcodeLabel(3))
	assert.Equal(t, "get_tickets", opcodeLabel(5))
	assert.Equal(t, "unknown", opcodeLabel(200))
}
