package translate

import (
	"github.com/student/armreil/internal/arm"
	"github.com/student/armreil/internal/reil"
)

// CondGate emits the conditional skip-to-end prologue for non-branch
// instructions carrying a condition code other than AL (spec §4.6).
type CondGate struct{}

// NewCondGate returns a stateless condition-gate emitter.
func NewCondGate() *CondGate { return &CondGate{} }

// Emit appends the instructions that compute not predicate(cond),
// followed by `jcc(not predicate(cond), end_of_instruction)`, when cond
// is not AL; called on an empty buffer, this prologue precedes the
// instruction's own IR. end_of_instruction is padded to the next
// instruction's sub-address space (spec §4.6).
func (g *CondGate) Emit(tb *TBuilder, instr arm.Instruction, cond arm.Condition) {
	if cond == arm.AL {
		return
	}
	pred := g.predicate(tb, cond)
	negated := tb.NegateReg(pred)
	endAddr := (instr.Address + uint64(instr.Size)) << 8
	tb.Add(tb.ir.Jcc(negated, reil.Immediate{Value: endAddr, Bits: 40}))
}

// predicate builds the 1-bit condition-true value for cond from the
// flag registers, per the table in spec §4.6.
func (g *CondGate) predicate(tb *TBuilder, cond arm.Condition) reil.Operand {
	n := flagReg(reil.FlagN)
	z := flagReg(reil.FlagZ)
	c := flagReg(reil.FlagC)
	v := flagReg(reil.FlagV)

	switch cond {
	case arm.EQ:
		return z
	case arm.NE:
		return tb.NegateReg(z)
	case arm.CS:
		return c
	case arm.CC:
		return tb.NegateReg(c)
	case arm.MI:
		return n
	case arm.PL:
		return tb.NegateReg(n)
	case arm.VS:
		return v
	case arm.VC:
		return tb.NegateReg(v)
	case arm.HI:
		return tb.AndRegs(c, tb.NegateReg(z))
	case arm.LS:
		return tb.OrRegs(tb.NegateReg(c), z)
	case arm.GE:
		return tb.EqualRegs(n, v)
	case arm.LT:
		return tb.UnequalRegs(n, v)
	case arm.GT:
		return tb.AndRegs(tb.NegateReg(z), tb.EqualRegs(n, v))
	case arm.LE:
		return tb.OrRegs(z, tb.UnequalRegs(n, v))
	default:
		// AL is handled by the caller; any other value is treated as
		// always-true, matching the teacher's checkCondition_Arm default.
		return tb.Immediate(1, 1)
	}
}
