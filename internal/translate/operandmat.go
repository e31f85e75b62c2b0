package translate

import (
	"strconv"
	"strings"

	"github.com/student/armreil/internal/arm"
	"github.com/student/armreil/internal/reil"
)

// Read materializes an ARM operand as an IR value (spec §4.3, "read
// semantics"; the shifted-register and memory cases are OperandMat's
// job per spec §4.4).
func (tb *TBuilder) Read(op arm.Operand) (reil.Operand, error) {
	switch o := op.(type) {
	case arm.Immediate:
		return reil.Immediate{Value: uint64(o.Value), Bits: o.Bits}, nil

	case arm.Register:
		if name, ok := tb.pcSubstitute(o); ok {
			return name, nil
		}
		return reil.Register{Name: o.Name, Bits: o.Bits}, nil

	case arm.ShiftedRegister:
		return tb.lowerShift(o)

	case arm.Memory:
		addr, err := tb.effectiveAddress(o)
		if err != nil {
			return nil, err
		}
		dst := tb.Temporal(o.Bits)
		tb.Add(tb.ir.Ldm(addr, dst))
		return dst, nil

	case arm.RegisterList:
		return nil, NewInvalidOperand("RegisterList has no single IR value; expand it explicitly")

	default:
		return nil, NewNotImplemented("unrecognized ARM operand type %T", op)
	}
}

// pcSubstitute implements spec §3 invariant 4 / §9: a read of r15
// observes instruction_address + PCOffset(), not the live value of any
// IR register named r15.
func (tb *TBuilder) pcSubstitute(r arm.Register) (reil.Operand, bool) {
	if r.Name != "r15" && r.Name != "pc" {
		return nil, false
	}
	value := tb.instr.Address + tb.instr.PCOffset()
	return reil.Immediate{Value: value, Bits: 32}, true
}

// Write stores value into the destination denoted by an ARM operand
// (spec §4.3, "write semantics").
func (tb *TBuilder) Write(op arm.Operand, value reil.Operand) error {
	switch o := op.(type) {
	case arm.Register:
		tb.Add(tb.ir.Str(value, reil.Register{Name: o.Name, Bits: o.Bits}))
		return nil

	case arm.Memory:
		addr, err := tb.effectiveAddress(o)
		if err != nil {
			return err
		}
		tb.Add(tb.ir.Stm(value, addr))
		return nil

	default:
		return NewInvalidOperand("write target must be a register or memory operand, got %T", op)
	}
}

// lowerShift implements spec §4.4.1. Only lsl is fully specified by the
// spec's value-path rules; lsr/asr/ror/rrx follow the same
// three-case shape the spec asks implementers to fill in.
func (tb *TBuilder) lowerShift(s arm.ShiftedRegister) (reil.Operand, error) {
	base := reil.Register{Name: s.Base.Name, Bits: s.Base.Bits}
	if s.Amount == nil {
		if s.Type == arm.RRX {
			return tb.rotateRightExtended(base, s.Bits)
		}
		return base, nil
	}

	switch amt := s.Amount.(type) {
	case arm.Immediate:
		return tb.shiftByImmediate(base, s.Type, uint8(amt.Value), s.Bits)
	case arm.Register:
		amtReg := reil.Register{Name: amt.Name, Bits: amt.Bits}
		return tb.shiftByRegister(base, s.Type, amtReg, s.Bits)
	default:
		return nil, NewNotImplemented("shift amount operand type %T", amt)
	}
}

func (tb *TBuilder) shiftByImmediate(base reil.Operand, typ arm.ShiftType, amount uint8, width uint8) (reil.Operand, error) {
	if amount == 0 {
		return base, nil
	}
	switch typ {
	case arm.LSL:
		dst := tb.Temporal(width)
		tb.Add(tb.ir.Bsh(base, tb.signedImmediate(int64(amount)), dst))
		return dst, nil
	case arm.LSR:
		dst := tb.Temporal(width)
		tb.Add(tb.ir.Bsh(base, tb.signedImmediate(-int64(amount)), dst))
		return dst, nil
	case arm.ASR:
		return tb.arithmeticShiftRight(base, tb.Immediate(uint64(amount), 8), width)
	case arm.ROR:
		return tb.rotateRight(base, tb.Immediate(uint64(amount), 8), width)
	case arm.RRX:
		return tb.rotateRightExtended(base, width)
	default:
		return nil, NewNotImplemented("shift type %v", typ)
	}
}

// shiftByRegister implements the LSL-by-register cutoff rule of spec
// §4.4.1 using labelled control flow (TBuilder's label/_jump_if_zero/
// _jump_to contract; the only caller of JumpTo): amounts
// of 33 or more collapse to zero in the value path even though the
// carry-out path (FlagEngine) treats >32 specially.
func (tb *TBuilder) shiftByRegister(base reil.Operand, typ arm.ShiftType, amountReg reil.Operand, width uint8) (reil.Operand, error) {
	amt8 := tb.maskLow8(amountReg)
	switch typ {
	case arm.LSL:
		dst := tb.Temporal(width)
		cutoff := tb.Immediate(33, 8)
		ge := tb.GreaterThanOrEqual(amt8, cutoff)
		shiftIt := tb.Label("shift")
		done := tb.Label("done")
		tb.JumpIfZero(ge, shiftIt)
		tb.Add(tb.ir.Str(tb.Immediate(0, width), dst))
		tb.JumpTo(done)
		tb.AddLabel(shiftIt)
		tb.Add(tb.ir.Bsh(base, tb.signedToWidth(amt8), dst))
		tb.AddLabel(done)
		return dst, nil
	case arm.LSR, arm.ASR, arm.ROR, arm.RRX:
		return nil, NewNotImplemented("register-amount %v shift", typ)
	default:
		return nil, NewNotImplemented("shift type %v", typ)
	}
}

// maskLow8 returns the low 8 bits of v as an 8-bit register, per the
// "take low 8 bits of R as amt8" rule used throughout §4.4/§4.5.
func (tb *TBuilder) maskLow8(v reil.Operand) reil.Operand {
	dst := tb.Temporal(8)
	tb.Add(tb.ir.And(v, tb.Immediate(0xFF, v.Width()), dst))
	return dst
}

// signedToWidth turns an unsigned amt8 register into the 32-bit signed
// bsh shift-amount convention this translator uses (see signedImmediate).
func (tb *TBuilder) signedToWidth(amt8 reil.Operand) reil.Operand {
	dst := tb.Temporal(32)
	tb.Add(tb.ir.Str(amt8, dst))
	return dst
}

// arithmeticShiftRight, rotateRight, and rotateRightExtended fill in the
// shift types spec §4.4.1 and §9 leave as an open item for
// implementers: asr replicates the sign bit, ror wraps the low bits
// into the top, and rrx rotates through the carry flag.
func (tb *TBuilder) arithmeticShiftRight(base reil.Operand, amount reil.Immediate, width uint8) (reil.Operand, error) {
	if amount.Value == 0 {
		return base, nil
	}
	signBit := tb.ExtractBit(base, int(width)-1)
	shifted := tb.Temporal(width)
	tb.Add(tb.ir.Bsh(base, tb.signedImmediate(-int64(amount.Value)), shifted))
	// Replicate the sign bit into the vacated high bits: build a mask of
	// 1s shifted down from the top and OR it in when signBit is set.
	fillPattern := tb.Temporal(width)
	tb.Add(tb.ir.Mul(signBit, tb.Immediate(^uint64(0), width), fillPattern))
	highMask := tb.Temporal(width)
	full := tb.Immediate(^uint64(0), width)
	tb.Add(tb.ir.Bsh(full, tb.signedImmediate(int64(width)-int64(amount.Value)), highMask))
	fill := tb.AndRegs(fillPattern, highMask)
	return tb.OrRegs(shifted, fill), nil
}

func (tb *TBuilder) rotateRight(base reil.Operand, amount reil.Immediate, width uint8) (reil.Operand, error) {
	amt := amount.Value % uint64(width)
	if amt == 0 {
		return base, nil
	}
	low := tb.Temporal(width)
	tb.Add(tb.ir.Bsh(base, tb.signedImmediate(-int64(amt)), low))
	high := tb.Temporal(width)
	tb.Add(tb.ir.Bsh(base, tb.signedImmediate(int64(width)-int64(amt)), high))
	return tb.OrRegs(low, high), nil
}

func (tb *TBuilder) rotateRightExtended(base reil.Operand, width uint8) (reil.Operand, error) {
	carry := reil.Register{Name: reil.FlagC, Bits: 1}
	shifted := tb.Temporal(width)
	tb.Add(tb.ir.Bsh(base, tb.signedImmediate(-1), shifted))
	carryWide := tb.Temporal(width)
	tb.Add(tb.ir.Bsh(widen(tb, carry, width), tb.signedImmediate(int64(width)-1), carryWide))
	return tb.OrRegs(shifted, carryWide), nil
}

// effectiveAddress implements spec §4.4.2. Writeback happens exactly
// once per translation, and pre-indexed writeback happens before the
// memory access (spec §9, Writeback safety).
func (tb *TBuilder) effectiveAddress(m arm.Memory) (reil.Operand, error) {
	base := reil.Register{Name: m.Base.Name, Bits: m.Base.Bits}
	if m.Disp == nil {
		return base, nil
	}

	disp, err := tb.Read(m.Disp)
	if err != nil {
		return nil, err
	}

	combine := func(a, b reil.Operand) reil.Operand {
		dst := tb.Temporal(maxWidth(a.Width(), b.Width()))
		if m.DispMinus {
			tb.Add(tb.ir.Sub(widen(tb, a, dst.Bits), widen(tb, b, dst.Bits), dst))
		} else {
			tb.Add(tb.ir.Add(widen(tb, a, dst.Bits), widen(tb, b, dst.Bits), dst))
		}
		return dst
	}

	switch m.Index {
	case arm.IndexPre:
		addr := combine(base, disp)
		tb.Add(tb.ir.Str(addr, base))
		return addr, nil
	case arm.IndexOffset:
		return combine(base, disp), nil
	case arm.IndexPost:
		// Snapshot the pre-writeback base into a fresh temporary before
		// combine() reads it: base is a named REIL register, and the
		// caller emits the memory access against whatever operand we
		// return here *after* the writeback str below has already run.
		// Returning base itself would make the access observe the
		// incremented value (spec §4.4.2: the access uses base as-is,
		// only then is the new address written back).
		orig := tb.Temporal(base.Bits)
		tb.Add(tb.ir.Str(base, orig))
		newBase := combine(base, disp)
		tb.Add(tb.ir.Str(newBase, base))
		return orig, nil
	default:
		return nil, NewNotImplemented("memory index mode %v", m.Index)
	}
}

// ExpandRegisterList implements spec §4.4.3: an ordered list of
// register ranges expands into individual registers, parsing the
// trailing digits of the first register name in a range (e.g. r3-r7 ->
// r3, r4, r5, r6, r7). start > end is a malformed range, reported as an
// InvalidOperandError.
func ExpandRegisterList(list arm.RegisterList) ([]reil.Register, error) {
	var out []reil.Register
	for _, r := range list.Ranges {
		if r.End == "" {
			out = append(out, reil.Register{Name: r.Start, Bits: 32})
			continue
		}
		startN, err := registerNumber(r.Start)
		if err != nil {
			return nil, NewInvalidOperand("malformed range start %q: %v", r.Start, err)
		}
		endN, err := registerNumber(r.End)
		if err != nil {
			return nil, NewInvalidOperand("malformed range end %q: %v", r.End, err)
		}
		if startN > endN {
			return nil, NewInvalidOperand("malformed range: start r%d > end r%d", startN, endN)
		}
		for n := startN; n <= endN; n++ {
			out = append(out, reil.Register{Name: "r" + strconv.Itoa(n), Bits: 32})
		}
	}
	return out, nil
}

func registerNumber(name string) (int, error) {
	trimmed := strings.TrimPrefix(name, "r")
	return strconv.Atoi(trimmed)
}
