package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialWithNoSinksIsANoop(t *testing.T) {
	sink, err := Dial("", "")
	require.NoError(t, err)
	require.NotNil(t, sink)

	sink.Record(Event{Kind: Created, ReservationID: 1, EventID: 0, TicketCount: 5, At: time.Now()})
	assert.NoError(t, sink.Close())
}

func TestNilSinkRecordAndCloseAreSafe(t *testing.T) {
	var sink *Sink
	assert.NotPanics(t, func() {
		sink.Record(Event{Kind: Expired})
	})
	assert.NoError(t, sink.Close())
}
