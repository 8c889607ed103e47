// Package ticketcode produces the monotonically increasing 7-character
// ticket codes issued at redemption time.
package ticketcode

// Len is the fixed width of a ticket code.
const Len = 7

// Generator holds the next code to be issued. Use NewGenerator: the zero
// value holds NUL bytes, not "0000000".
type Generator struct {
	next [Len]byte
}

// NewGenerator returns a Generator primed at "0000000".
func NewGenerator() *Generator {
	g := &Generator{}
	for i := range g.next {
		g.next[i] = '0'
	}
	return g
}

// Next returns the current code and advances the generator.
func (g *Generator) Next() string {
	code := string(g.next[:])
	g.advance()
	return code
}

// advance applies the carry rule scanning from the least significant
// position — the rightmost character of the printed code — toward the
// most significant: 'Z' carries to '0' and continues; '9' rolls to 'A'
// without carrying; anything else just increments.
func (g *Generator) advance() {
	for i := Len - 1; i >= 0; i-- {
		switch g.next[i] {
		case 'Z':
			g.next[i] = '0'
			continue
		case '9':
			g.next[i] = 'A'
		default:
			g.next[i]++
		}
		return
	}
	// Every position carried: full wrap back to "0000000".
}
