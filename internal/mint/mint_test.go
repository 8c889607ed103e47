package mint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextReservationIDEmptyStore(t *testing.T) {
	id, err := NextReservationID(nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(MinReservationID), id)
}

func TestNextReservationIDOnePastMax(t *testing.T) {
	id, err := NextReservationID([]uint32{MinReservationID, MinReservationID + 1, MinReservationID + 5})
	require.NoError(t, err)
	assert.Equal(t, uint32(MinReservationID+6), id)
}

func TestNextReservationIDFillsGapOnOverflow(t *testing.T) {
	live := []uint32{1, 2, 3, 5, 6, 4294967295}
	id, err := NextReservationID(live)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), id)
}

func TestNextReservationIDExhausted(t *testing.T) {
	live := []uint32{4294967294, 4294967295}
	_, err := NextReservationID(live)
	assert.Error(t, err)
}

func TestNextCookieAvoidsLiveCookies(t *testing.T) {
	var used [CookieLen]byte
	for i := range used {
		used[i] = '!'
	}
	calls := 0
	isLive := func(c [CookieLen]byte) bool {
		calls++
		return calls == 1 // reject the first draw only
	}
	cookie, err := NextCookie(isLive)
	require.NoError(t, err)
	assert.Equal(t, CookieLen, len(cookie))
	assert.GreaterOrEqual(t, calls, 2)
}

func TestNextCookieBytesArePrintableASCII(t *testing.T) {
	cookie, err := NextCookie(func([CookieLen]byte) bool { return false })
	require.NoError(t, err)
	for _, b := range cookie {
		assert.GreaterOrEqual(t, int(b), cookieByteMin)
		assert.LessOrEqual(t, int(b), cookieByteMax)
	}
}
