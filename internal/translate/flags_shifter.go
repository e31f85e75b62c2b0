package translate

import (
	"github.com/student/armreil/internal/arm"
	"github.com/student/armreil/internal/reil"
)

// ShifterCarryOut implements spec §4.5.1: the carry-out produced by the
// barrel shifter when it feeds a logical data-processing instruction.
// It returns (nil, false) when the operand leaves C unchanged.
func (fe *FlagEngine) ShifterCarryOut(tb *TBuilder, op arm.Operand, width uint8) (reil.Operand, bool) {
	sr, ok := op.(arm.ShiftedRegister)
	if !ok {
		// Immediate or plain Register: no change to C (spec §4.5.1).
		return nil, false
	}
	base := reil.Register{Name: sr.Base.Name, Bits: sr.Base.Bits}

	switch amt := sr.Amount.(type) {
	case nil:
		if sr.Type == arm.RRX {
			// RRX carries no amount and always shifts bit 0 out into C.
			return tb.ExtractBit(base, 0), true
		}
		return nil, false
	case arm.Immediate:
		return fe.shiftCarryImmediate(tb, base, sr.Type, uint8(amt.Value), width)
	case arm.Register:
		amtReg := reil.Register{Name: amt.Name, Bits: amt.Bits}
		return fe.shiftCarryRegister(tb, base, sr.Type, tb.maskLow8(amtReg), width)
	default:
		return nil, false
	}
}

func (fe *FlagEngine) shiftCarryImmediate(tb *TBuilder, base reil.Operand, typ arm.ShiftType, amount uint8, width uint8) (reil.Operand, bool) {
	if amount == 0 && typ != arm.RRX {
		return nil, false
	}
	switch typ {
	case arm.LSL:
		return tb.ExtractBit(base, int(width)-int(amount)), true
	case arm.LSR, arm.ASR:
		return tb.ExtractBit(base, int(amount)-1), true
	case arm.ROR:
		k := int(amount-1) % int(width)
		return tb.ExtractBit(base, k), true
	case arm.RRX:
		return tb.ExtractBit(base, 0), true
	default:
		return nil, false
	}
}

func (fe *FlagEngine) shiftCarryRegister(tb *TBuilder, base reil.Operand, typ arm.ShiftType, amt8 reil.Operand, width uint8) (reil.Operand, bool) {
	zero := tb.equalZero(amt8)
	inRange := tb.GreaterThanOrEqual(tb.Immediate(32, 8), amt8) // amt8 <= 32
	overMax := tb.AndRegs(tb.NegateReg(zero), tb.NegateReg(inRange))

	var atMax reil.Operand
	switch typ {
	case arm.LSL:
		atMax = tb.ExtractBit(base, 0) // bit[32-32]
	case arm.LSR, arm.ASR:
		atMax = tb.ExtractBit(base, int(width)-1)
	case arm.ROR:
		atMax = tb.ExtractBit(base, int(width)-1)
	default:
		return nil, false
	}

	// When amt8 is in 1..32 we want bit[width-amt8] (lsl) or bit[amt8-1]
	// (lsr/asr/ror); those are both computable with a register-indexed
	// extract once the index itself is derived arithmetically.
	var idx reil.Operand
	switch typ {
	case arm.LSL:
		idx = tb.sub8(tb.Immediate(uint64(width), 8), amt8)
	default:
		idx = tb.sub8(amt8, tb.Immediate(1, 8))
	}
	general := tb.ExtractBitWithRegister(base, idx)

	atMaxExact := tb.EqualRegs(amt8, tb.Immediate(32, 8))
	chosen := tb.ternary(atMaxExact, atMax, general)
	// amt8 == 0 leaves C at its prior value (spec §4.5.1); amt8 > 32
	// forces C to 0; otherwise the 1..32 bit-extract above applies.
	currentC := flagReg(reil.FlagC)
	withOverMax := tb.ternary(overMax, tb.Immediate(0, 1), chosen)
	carry := tb.ternary(zero, currentC, withOverMax)
	return carry, true
}

// sub8 computes a - b as an 8-bit value.
func (tb *TBuilder) sub8(a, b reil.Operand) reil.Operand {
	dst := tb.Temporal(8)
	tb.Add(tb.ir.Sub(widen(tb, a, 8), widen(tb, b, 8), dst))
	return dst
}

// ternary returns whenTrue if cond is set, else whenFalse, both 1-bit
// values, implemented branch-free with mask arithmetic. A nil
// whenFalse is treated as the constant 0, matching "C unchanged" being
// folded into "leave the prior value" by the caller when applicable is
// false — callers of ShifterCarryOut only honor the returned operand
// when they already know it applies, so 0 here is a safe default.
func (tb *TBuilder) ternary(cond, whenTrue, whenFalse reil.Operand) reil.Operand {
	t := tb.AndRegs(cond, whenTrue)
	if whenFalse == nil {
		return t
	}
	f := tb.AndRegs(tb.NegateReg(cond), whenFalse)
	return tb.OrRegs(t, f)
}
