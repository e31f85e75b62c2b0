package translate

import "github.com/student/armreil/internal/arm"

// Routine translates one ARM instruction against an already-constructed
// TBuilder, appending IR into it. A returned error aborts the
// instruction; the Translator decides whether to recover (spec §7).
type Routine func(tb *TBuilder, instr arm.Instruction) error

// Dispatcher maps a lowercase mnemonic (condition suffix already
// stripped by the decoder) to the routine that knows how to translate
// it (spec §4.7).
type Dispatcher struct {
	routines map[string]Routine
}

// NewDispatcher builds a Dispatcher with every mnemonic family this
// translator covers registered.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{routines: make(map[string]Routine)}
	registerDataProc(d)
	registerMul(d)
	registerLoadStore(d)
	registerBlock(d)
	registerBranch(d)
	registerSwi(d)
	return d
}

func (d *Dispatcher) register(mnemonic string, r Routine) {
	d.routines[mnemonic] = r
}

// Lookup returns the routine registered for mnemonic, if any.
func (d *Dispatcher) Lookup(mnemonic string) (Routine, bool) {
	r, ok := d.routines[mnemonic]
	return r, ok
}
