package translate

import "github.com/student/armreil/internal/reil"

// FlagEngine computes N/Z/C/V updates for arithmetic and logical
// instruction classes (spec §4.5). All updates read operand0, operand1
// and a result computed at double width so the carry-out bit is simply
// bit `width` of the double-width value.
type FlagEngine struct{}

// NewFlagEngine returns a stateless flag-update emitter.
func NewFlagEngine() *FlagEngine { return &FlagEngine{} }

func flagReg(name string) reil.Register { return reil.Register{Name: name, Bits: 1} }

func (fe *FlagEngine) setN(tb *TBuilder, result reil.Operand, width uint8) {
	bit := tb.ExtractBit(result, int(width)-1)
	tb.Add(tb.ir.Str(bit, flagReg(reil.FlagN)))
}

func (fe *FlagEngine) setZ(tb *TBuilder, result reil.Operand, width uint8) {
	masked := result
	if result.Width() != width {
		masked = tb.AndRegs(result, tb.Immediate(widthMask(width), width))
	}
	z := tb.equalZero(masked)
	tb.Add(tb.ir.Str(z, flagReg(reil.FlagZ)))
}

// wideResult computes op0 OP op1 at double width so bit `width` of the
// result is the carry/borrow bit (spec §4.5 Cadd/Csub).
func (fe *FlagEngine) wideResult(tb *TBuilder, op0, op1 reil.Operand, width uint8, sub bool) reil.Operand {
	dst := tb.Temporal(2 * width)
	a := widen(tb, op0, 2*width)
	b := widen(tb, op1, 2*width)
	if sub {
		tb.Add(tb.ir.Sub(a, b, dst))
	} else {
		tb.Add(tb.ir.Add(a, b, dst))
	}
	return dst
}

// DataProcAdd applies the {Z, N, Cadd, Vadd} update for ADD-class
// instructions given the narrow (width-bit) result.
func (fe *FlagEngine) DataProcAdd(tb *TBuilder, op0, op1, result reil.Operand, width uint8) {
	wide := fe.wideResult(tb, op0, op1, width, false)
	fe.setZ(tb, result, width)
	fe.setN(tb, result, width)
	carry := tb.ExtractBit(wide, int(width))
	tb.Add(tb.ir.Str(carry, flagReg(reil.FlagC)))
	overflow := fe.overflowAdd(tb, op0, op1, result, width)
	tb.Add(tb.ir.Str(overflow, flagReg(reil.FlagV)))
}

// DataProcSub applies the {Z, N, Csub-then-invert, Vsub} update for
// SUB-class instructions. C=1 means "no borrow" (spec §4.5 Csub), which
// is ARM's convention and what makes SBC/RSC correct.
func (fe *FlagEngine) DataProcSub(tb *TBuilder, op0, op1, result reil.Operand, width uint8) {
	wide := fe.wideResult(tb, op0, op1, width, true)
	fe.setZ(tb, result, width)
	fe.setN(tb, result, width)
	borrow := tb.ExtractBit(wide, int(width))
	noBorrow := tb.NegateReg(borrow)
	tb.Add(tb.ir.Str(noBorrow, flagReg(reil.FlagC)))
	overflow := tb.OverflowFromSub(op0, op1, result, width)
	tb.Add(tb.ir.Str(overflow, flagReg(reil.FlagV)))
}

// DataProcOther applies the {Z, N, shifter-carry, V-unchanged} update
// used by the logical class (AND/OR/XOR/MOV/MVN/TST/TEQ). carryOut is
// nil when the second operand did not go through the shifter (spec
// §4.5.1): in that case C is left untouched.
func (fe *FlagEngine) DataProcOther(tb *TBuilder, result reil.Operand, width uint8, carryOut reil.Operand) {
	fe.setZ(tb, result, width)
	fe.setN(tb, result, width)
	if carryOut != nil {
		tb.Add(tb.ir.Str(carryOut, flagReg(reil.FlagC)))
	}
}

// Other applies the {Z, N} update with both C and V left unchanged,
// used by classes like MUL (spec §4.5 "other").
func (fe *FlagEngine) Other(tb *TBuilder, result reil.Operand, width uint8) {
	fe.setZ(tb, result, width)
	fe.setN(tb, result, width)
}

func (fe *FlagEngine) overflowAdd(tb *TBuilder, op0, op1, result reil.Operand, width uint8) reil.Operand {
	signA := tb.ExtractBit(op0, int(width)-1)
	signB := tb.ExtractBit(op1, int(width)-1)
	signR := tb.ExtractBit(result, int(width)-1)
	sameSign := tb.EqualRegs(signA, signB)
	differsFromResult := tb.UnequalRegs(signA, signR)
	return tb.AndRegs(sameSign, differsFromResult)
}

// ClearFlag sets flag name to 0.
func (fe *FlagEngine) ClearFlag(tb *TBuilder, name string) {
	tb.Add(tb.ir.Str(tb.Immediate(0, 1), flagReg(name)))
}

// SetFlag sets flag name to 1.
func (fe *FlagEngine) SetFlag(tb *TBuilder, name string) {
	tb.Add(tb.ir.Str(tb.Immediate(1, 1), flagReg(name)))
}

// UndefineFlag clears a flag ARM leaves architecturally undefined. The
// source this translator is derived from observed hardware clearing
// such flags rather than leaving them stale; this is a conservative
// choice, not an architectural guarantee (spec §9, Open questions).
func (fe *FlagEngine) UndefineFlag(tb *TBuilder, name string) {
	tb.Add(tb.ir.Undef(flagReg(name)))
	fe.ClearFlag(tb, name)
}

func widthMask(width uint8) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}
