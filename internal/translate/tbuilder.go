// Package translate implements the ARM-to-REIL translation core: the
// mapping from decoded ARM instructions to REIL sequences (spec §1).
package translate

import (
	"github.com/student/armreil/internal/arm"
	"github.com/student/armreil/internal/reil"
)

// label is a placeholder inserted into a TBuilder's pending sequence.
// Instanciate resolves it to the address of whatever follows it and
// patches any jcc target operand that referenced it. Labels never
// outlive one instruction's translation (spec §3, Lifecycles).
type label struct {
	name    string
	address uint64
	armAddr bool // true once resolved
}

// pending is either a finished reil.Instruction or a label awaiting
// resolution, in the order TBuilder.Add received them.
type pending struct {
	instr *reil.Instruction
	lbl   *label
}

// TBuilder accumulates the REIL sequence for a single ARM instruction.
// It is thrown away after one Translator.translate call (spec §4.3).
type TBuilder struct {
	names *reil.NameGen
	ir    *reil.Builder
	items []pending
	instr arm.Instruction

	// jccLabel maps a buffered instruction's Op2 label reference back
	// to the label it must be patched with once resolved.
	jccLabel map[*reil.Instruction]*label
}

// NewTBuilder returns an empty TBuilder for translating instr, using
// names for fresh temporaries.
func NewTBuilder(instr arm.Instruction, names *reil.NameGen) *TBuilder {
	return &TBuilder{
		names:    names,
		ir:       reil.NewBuilder(),
		instr:    instr,
		jccLabel: make(map[*reil.Instruction]*label),
	}
}

// Temporal returns a fresh temporary register of the requested width.
func (tb *TBuilder) Temporal(width uint8) reil.Register {
	return reil.Register{Name: tb.names.Next(), Bits: width}
}

// Immediate builds a constant operand.
func (tb *TBuilder) Immediate(value uint64, width uint8) reil.Immediate {
	return reil.Immediate{Value: value, Bits: width}
}

// signedImmediate packs a signed shift amount into REIL's 32-bit signed
// bsh operand convention (negative value = shift right).
func (tb *TBuilder) signedImmediate(v int64) reil.Immediate {
	return reil.Immediate{Value: uint64(uint32(v)), Bits: 32}
}

// Label creates a forward label. Its final address is resolved at
// Instanciate time.
func (tb *TBuilder) Label(name string) *label {
	return &label{name: name}
}

// Add appends a finished instruction to the pending sequence and
// returns it, so callers can chain a jcc target patch via JumpTo/
// JumpIfZero.
func (tb *TBuilder) Add(instr reil.Instruction) *reil.Instruction {
	in := instr
	tb.items = append(tb.items, pending{instr: &in})
	return &in
}

// AddLabel appends a label marker to the pending sequence.
func (tb *TBuilder) AddLabel(l *label) {
	tb.items = append(tb.items, pending{lbl: l})
}

// JumpTo emits an unconditional jump to l (cond operand is the constant 1).
func (tb *TBuilder) JumpTo(l *label) {
	in := tb.ir.Jcc(tb.Immediate(1, 1), reil.Immediate{})
	ptr := tb.Add(in)
	tb.jccLabel[ptr] = l
}

// JumpIfZero emits a jump to l when value == 0.
func (tb *TBuilder) JumpIfZero(value reil.Operand, l *label) {
	cond := tb.equalZero(value)
	in := tb.ir.Jcc(cond, reil.Immediate{})
	ptr := tb.Add(in)
	tb.jccLabel[ptr] = l
}

func (tb *TBuilder) equalZero(value reil.Operand) reil.Operand {
	dst := tb.Temporal(1)
	tb.Add(tb.ir.Bisz(value, dst))
	return dst
}

// AndRegs computes a & b into a fresh temporary of max(w(a),w(b)).
func (tb *TBuilder) AndRegs(a, b reil.Operand) reil.Operand {
	w := maxWidth(a.Width(), b.Width())
	dst := tb.Temporal(w)
	tb.Add(tb.ir.And(widen(tb, a, w), widen(tb, b, w), dst))
	return dst
}

// OrRegs computes a | b.
func (tb *TBuilder) OrRegs(a, b reil.Operand) reil.Operand {
	w := maxWidth(a.Width(), b.Width())
	dst := tb.Temporal(w)
	tb.Add(tb.ir.Or(widen(tb, a, w), widen(tb, b, w), dst))
	return dst
}

// XorRegs computes a ^ b.
func (tb *TBuilder) XorRegs(a, b reil.Operand) reil.Operand {
	w := maxWidth(a.Width(), b.Width())
	dst := tb.Temporal(w)
	tb.Add(tb.ir.Xor(widen(tb, a, w), widen(tb, b, w), dst))
	return dst
}

// NegateReg computes the 1-bit logical negation of a 1-bit value.
func (tb *TBuilder) NegateReg(a reil.Operand) reil.Operand {
	dst := tb.Temporal(1)
	tb.Add(tb.ir.Xor(a, tb.Immediate(1, 1), dst))
	return dst
}

// EqualRegs returns a 1-bit register set when a == b.
func (tb *TBuilder) EqualRegs(a, b reil.Operand) reil.Operand {
	diff := tb.XorRegs(a, b)
	return tb.equalZero(diff)
}

// UnequalRegs returns a 1-bit register set when a != b.
func (tb *TBuilder) UnequalRegs(a, b reil.Operand) reil.Operand {
	return tb.NegateReg(tb.EqualRegs(a, b))
}

// GreaterThanOrEqual returns a 1-bit register set when a >= b, treating
// both as unsigned values of equal width. It uses the same double-width
// subtraction the FlagEngine uses for Csub: bit w of a (w-wide) minus b
// computed in 2w bits is the borrow indicator, and a >= b iff no borrow
// occurred (spec names this "_greater_than_or_equal (unsigned)").
func (tb *TBuilder) GreaterThanOrEqual(a, b reil.Operand) reil.Operand {
	w := maxWidth(a.Width(), b.Width())
	wide := tb.Temporal(2 * w)
	tb.Add(tb.ir.Sub(widen(tb, a, w), widen(tb, b, w), wide))
	borrow := tb.ExtractBit(wide, int(w))
	return tb.NegateReg(borrow)
}

// ExtractBit returns a 1-bit register holding bit bitIndex of source.
func (tb *TBuilder) ExtractBit(source reil.Operand, bitIndex int) reil.Operand {
	w := source.Width()
	shifted := tb.Temporal(w)
	tb.Add(tb.ir.Bsh(source, tb.signedImmediate(int64(-bitIndex)), shifted))
	masked := tb.Temporal(w)
	tb.Add(tb.ir.And(shifted, tb.Immediate(1, w), masked))
	dst := tb.Temporal(1)
	tb.Add(tb.ir.Str(masked, dst))
	return dst
}

// ExtractBitWithRegister returns a 1-bit register holding bit number
// bitIndexReg (a register-held, variable bit position) of source.
func (tb *TBuilder) ExtractBitWithRegister(source reil.Operand, bitIndexReg reil.Operand) reil.Operand {
	w := source.Width()
	negIdx := tb.Temporal(bitIndexReg.Width())
	tb.Add(tb.ir.Mul(bitIndexReg, tb.Immediate(uint64(int64(-1)), bitIndexReg.Width()), negIdx))
	shifted := tb.Temporal(w)
	tb.Add(tb.ir.Bsh(source, negIdx, shifted))
	masked := tb.Temporal(w)
	tb.Add(tb.ir.And(shifted, tb.Immediate(1, w), masked))
	dst := tb.Temporal(1)
	tb.Add(tb.ir.Str(masked, dst))
	return dst
}

// OverflowFromSub returns a 1-bit register holding the signed-overflow
// predicate for op0 - op1 = result (spec §4.5 Vsub): the operands
// differ in sign and the result's sign differs from op0's.
func (tb *TBuilder) OverflowFromSub(op0, op1, result reil.Operand, width uint8) reil.Operand {
	signA := tb.ExtractBit(op0, int(width)-1)
	signB := tb.ExtractBit(op1, int(width)-1)
	signR := tb.ExtractBit(result, int(width)-1)
	diffSigns := tb.UnequalRegs(signA, signB)
	diffResult := tb.UnequalRegs(signA, signR)
	return tb.AndRegs(diffSigns, diffResult)
}

// Instanciate linearizes the pending buffer, resolves labels, and
// assigns each instruction the REIL address (base<<8 | i) (spec §3).
func (tb *TBuilder) Instanciate(base uint64) ([]reil.Instruction, error) {
	if len(tb.items) == 0 {
		return nil, NewAssertionViolation("empty translation buffer")
	}

	// First pass: assign addresses to instructions and resolve each
	// label to the address of whatever instruction follows it.
	addrs := make(map[*reil.Instruction]uint64, len(tb.items))
	var out []reil.Instruction
	var pendingLabels []*label
	idx := 0
	for _, it := range tb.items {
		if it.lbl != nil {
			pendingLabels = append(pendingLabels, it.lbl)
			continue
		}
		addr := (base << 8) | uint64(idx)
		if idx > 0xFF {
			return nil, NewAssertionViolation("sub-address overflow: more than 256 REIL instructions for one ARM instruction")
		}
		addrs[it.instr] = addr
		for _, l := range pendingLabels {
			l.address = addr
			l.armAddr = true
		}
		pendingLabels = nil
		idx++
	}
	// A label as the very last item resolves to one past the end.
	if len(pendingLabels) > 0 {
		endAddr := (base << 8) | uint64(idx)
		for _, l := range pendingLabels {
			l.address = endAddr
			l.armAddr = true
		}
	}

	lastAddr := int64(-1)
	for _, it := range tb.items {
		if it.lbl != nil {
			continue
		}
		in := *it.instr
		in.Address = addrs[it.instr]
		if l, ok := tb.jccLabel[it.instr]; ok {
			in.Op2 = reil.Immediate{Value: l.address, Bits: 40}
		}
		if int64(in.Address) <= lastAddr {
			return nil, NewAssertionViolation("REIL sub-addresses must be strictly increasing")
		}
		lastAddr = int64(in.Address)
		out = append(out, in)
	}
	return out, nil
}

func maxWidth(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

// widen returns v unchanged if it is already width bits wide, else a
// fresh temporary holding v zero-extended to width via str.
func widen(tb *TBuilder, v reil.Operand, width uint8) reil.Operand {
	if v.Width() == width {
		return v
	}
	dst := tb.Temporal(width)
	tb.Add(tb.ir.Str(v, dst))
	return dst
}
