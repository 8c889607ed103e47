// Package mint generates the two unguessable-or-unique values a
// reservation needs: its numeric identifier and its cookie. Both
// generators are pure functions of the caller's current live sets, so
// the reservation store owns all state and mint stays trivially
// testable.
package mint

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
)

// MinReservationID is the smallest value ever assigned to a reservation.
const MinReservationID = 1_000_000

// CookieLen is the fixed cookie size in bytes.
const CookieLen = 48

const (
	cookieByteMin = 33
	cookieByteMax = 126
	cookieRange   = cookieByteMax - cookieByteMin + 1
)

// maxCookieAttempts bounds the retry loop against a live set; with a
// 94^48 cookie space a collision on the first draw is astronomically
// unlikely, so this only guards against a caller passing a degenerate
// isLive that always returns true.
const maxCookieAttempts = 1000

// NextReservationID returns the next collision-free reservation id
// given the ids of all currently-live reservations, sorted ascending.
//
//  1. No live reservations: MinReservationID.
//  2. Otherwise, one past the greatest live id, unless that would
//     overflow uint32.
//  3. On overflow, the low end of the first gap between live ids plus
//     one — a low-frequency path that only matters once the id space
//     has been fully cycled through.
func NextReservationID(liveSorted []uint32) (uint32, error) {
	if len(liveSorted) == 0 {
		return MinReservationID, nil
	}

	max := liveSorted[len(liveSorted)-1]
	if max < math.MaxUint32 {
		return max + 1, nil
	}

	for i := 0; i+1 < len(liveSorted); i++ {
		if liveSorted[i+1]-liveSorted[i] > 1 {
			return liveSorted[i] + 1, nil
		}
	}
	return 0, errors.New("mint: reservation id space exhausted")
}

// NextCookie draws a 48-byte printable-ASCII cookie from crypto/rand,
// each byte uniform over [33,126], and retries while isLive reports the
// draw already belongs to a live reservation.
func NextCookie(isLive func(cookie [CookieLen]byte) bool) ([CookieLen]byte, error) {
	var cookie [CookieLen]byte
	// Entropy bytes at or above this bound are redrawn so that the
	// modulo reduction below stays uniform.
	const unbiasedBound = 256 - 256%cookieRange
	var one [1]byte
	for attempt := 0; attempt < maxCookieAttempts; attempt++ {
		for i := range cookie {
			for {
				if _, err := rand.Read(one[:]); err != nil {
					return cookie, fmt.Errorf("mint: read entropy: %w", err)
				}
				if one[0] < unbiasedBound {
					break
				}
			}
			cookie[i] = one[0]%cookieRange + cookieByteMin
		}
		if !isLive(cookie) {
			return cookie, nil
		}
	}
	return cookie, errors.New("mint: could not draw a free cookie")
}
