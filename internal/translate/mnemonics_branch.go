package translate

import (
	"github.com/student/armreil/internal/arm"
	"github.com/student/armreil/internal/reil"
)

// translateBranch implements b/bl/bx/blx (spec §4.6: the branch family
// tests its own condition inline instead of going through CondGate,
// since the "skip to end of instruction" trick CondGate relies on has
// no meaning for an instruction whose only job is to jump). link
// additionally writes the return address to lr, but only when the
// branch is actually taken: a conditional bl/blx whose condition is
// false has no architectural effect at all, so the lr write must be
// gated by the same predicate as the jump itself rather than emitted
// unconditionally ahead of it.
func translateBranch(tb *TBuilder, instr arm.Instruction, link bool) error {
	if len(instr.Operands) != 1 {
		return NewInvalidOperand("branch: expected 1 operand, got %d", len(instr.Operands))
	}
	target, err := tb.Read(instr.Operands[0])
	if err != nil {
		return err
	}

	cond := instr.ConditionOrAL()
	gate := NewCondGate()
	lr := reil.Register{Name: "r14", Bits: 32}
	retAddr := tb.Immediate(instr.Address+uint64(instr.Size), 32)

	if cond == arm.AL {
		if link {
			tb.Add(tb.ir.Str(retAddr, lr))
		}
		tb.Add(tb.ir.Jcc(tb.Immediate(1, 1), target))
		return nil
	}

	pred := gate.predicate(tb, cond)
	if link {
		notTaken := tb.Label("no_link")
		tb.JumpIfZero(pred, notTaken)
		tb.Add(tb.ir.Str(retAddr, lr))
		tb.AddLabel(notTaken)
	}
	tb.Add(tb.ir.Jcc(pred, target))
	return nil
}

func registerBranch(d *Dispatcher) {
	d.register("b", func(tb *TBuilder, instr arm.Instruction) error { return translateBranch(tb, instr, false) })
	d.register("bl", func(tb *TBuilder, instr arm.Instruction) error { return translateBranch(tb, instr, true) })
	d.register("bx", func(tb *TBuilder, instr arm.Instruction) error { return translateBranch(tb, instr, false) })
	d.register("blx", func(tb *TBuilder, instr arm.Instruction) error { return translateBranch(tb, instr, true) })
}
