package selection

const (
	// modulus is the Mersenne prime 2^31-1.
	modulus    = 2147483647
	multiplier = 16807
)

// Generator is the Park–Miller "minimal standard" linear congruential generator.
// Its sequence is fixed forever: decks selected for a date must not change when
// the program is upgraded, so it must never be swapped for math/rand.
//
// A Generator is not safe for concurrent use; Sample builds a fresh one per call.
type Generator struct {
	state int64
}

// NewGenerator seeds a generator. The state always lands in [1, 2^31-2].
func NewGenerator(seed uint32) *Generator {
	s := int64(seed) % modulus
	if s <= 0 {
		s += modulus - 1
	}
	return &Generator{state: s}
}

// State returns the current internal state.
func (g *Generator) State() int64 { return g.state }

// Next advances the generator and returns a value in [0, 1).
func (g *Generator) Next() float64 {
	g.state = (g.state * multiplier) % modulus
	return float64(g.state-1) / (modulus - 1)
}

// Intn returns floor(Next() * n) for n > 0.
func (g *Generator) Intn(n int) int {
	return int(g.Next() * float64(n))
}
