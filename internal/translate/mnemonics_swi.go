package translate

import "github.com/student/armreil/internal/arm"

// registerSwi installs swi/svc as a recognized-but-unmodeled mnemonic:
// the Translator still recovers it into a single Unkn, but the log
// message names it explicitly instead of reporting an unknown mnemonic
// (spec §9, supplemented from original_source/'s handling of software
// interrupts, which it also declines to give IR semantics to).
func registerSwi(d *Dispatcher) {
	routine := func(tb *TBuilder, instr arm.Instruction) error {
		return NewNotImplemented("software interrupt %s is not given IR semantics", instr.Mnemonic)
	}
	d.register("swi", routine)
	d.register("svc", routine)
}
