package translate

import "github.com/student/armreil/internal/arm"

// translateMul and translateMla implement the multiply class (spec §9,
// supplemented from original_source/'s _translate_mul): flag update is
// the "other" class (Z, N only; C and V untouched).
func translateMul(tb *TBuilder, instr arm.Instruction, setFlags, accumulate bool) error {
	want := 3
	if accumulate {
		want = 4
	}
	if len(instr.Operands) != want {
		return NewInvalidOperand("mul/mla: expected %d operands, got %d", want, len(instr.Operands))
	}
	rd := instr.Operands[0]
	rm, err := tb.Read(instr.Operands[1])
	if err != nil {
		return err
	}
	rs, err := tb.Read(instr.Operands[2])
	if err != nil {
		return err
	}

	wide := tb.Temporal(64)
	tb.Add(tb.ir.Mul(widen(tb, rm, 64), widen(tb, rs, 64), wide))

	if accumulate {
		rn, err := tb.Read(instr.Operands[3])
		if err != nil {
			return err
		}
		sum := tb.Temporal(64)
		tb.Add(tb.ir.Add(wide, widen(tb, rn, 64), sum))
		wide = sum
	}

	result := tb.Temporal(32)
	tb.Add(tb.ir.Str(wide, result))

	if err := tb.Write(rd, result); err != nil {
		return err
	}
	if setFlags {
		NewFlagEngine().Other(tb, result, 32)
	}
	return nil
}

func registerMul(d *Dispatcher) {
	d.register("mul", func(tb *TBuilder, instr arm.Instruction) error { return translateMul(tb, instr, false, false) })
	d.register("muls", func(tb *TBuilder, instr arm.Instruction) error { return translateMul(tb, instr, true, false) })
	d.register("mla", func(tb *TBuilder, instr arm.Instruction) error { return translateMul(tb, instr, false, true) })
	d.register("mlas", func(tb *TBuilder, instr arm.Instruction) error { return translateMul(tb, instr, true, true) })
}
