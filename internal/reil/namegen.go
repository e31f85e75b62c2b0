package reil

import "fmt"

// NameGen issues unique temporary register names of the form
// "<prefix><counter>" within one translation. It is reset before every
// ARM instruction the translator processes (spec §4.1); the counter
// itself is the only state a Translator carries across instructions.
type NameGen struct {
	prefix  string
	counter int
}

// NewNameGen returns a NameGen issuing names like "t0", "t1", ... when
// prefix is "t".
func NewNameGen(prefix string) *NameGen {
	return &NameGen{prefix: prefix}
}

// Next returns a fresh, previously unissued name.
func (g *NameGen) Next() string {
	name := fmt.Sprintf("%s%d", g.prefix, g.counter)
	g.counter++
	return name
}

// Reset returns the counter to zero. Names issued before a Reset may be
// reissued afterward; callers must not mix temporaries across a Reset
// boundary.
func (g *NameGen) Reset() {
	g.counter = 0
}
