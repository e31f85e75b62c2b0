package translate

import (
	"github.com/student/armreil/internal/arm"
	"github.com/student/armreil/internal/reil"
)

// dpKind names the arithmetic/logical relation a data-processing
// mnemonic computes, independent of whether it writes Rd or only
// updates flags (spec §9, supplemented from original_source/ to cover
// all sixteen ARM data-processing opcodes, not just ADD/SUB).
type dpKind int

const (
	dpAnd dpKind = iota
	dpEor
	dpSub
	dpRsb
	dpAdd
	dpAdc
	dpSbc
	dpRsc
	dpTst
	dpTeq
	dpCmp
	dpCmn
	dpOrr
	dpMov
	dpBic
	dpMvn
)

type dpSpec struct {
	kind       dpKind
	writesRd   bool
	hasRn      bool
	arithmetic bool // data_proc_add/sub class vs data_proc_other
	isSub      bool // for the arithmetic class, which FlagEngine path applies
}

var dpTable = map[dpKind]dpSpec{
	dpAnd: {dpAnd, true, true, false, false},
	dpEor: {dpEor, true, true, false, false},
	dpSub: {dpSub, true, true, true, true},
	dpRsb: {dpRsb, true, true, true, true},
	dpAdd: {dpAdd, true, true, true, false},
	dpAdc: {dpAdc, true, true, true, false},
	dpSbc: {dpSbc, true, true, true, true},
	dpRsc: {dpRsc, true, true, true, true},
	dpTst: {dpTst, false, true, false, false},
	dpTeq: {dpTeq, false, true, false, false},
	dpCmp: {dpCmp, false, true, true, true},
	dpCmn: {dpCmn, false, true, true, false},
	dpOrr: {dpOrr, true, true, false, false},
	dpMov: {dpMov, true, false, false, false},
	dpBic: {dpBic, true, true, false, false},
	dpMvn: {dpMvn, true, false, false, false},
}

var dpMnemonics = map[string]dpKind{
	"and": dpAnd, "eor": dpEor, "sub": dpSub, "rsb": dpRsb,
	"add": dpAdd, "adc": dpAdc, "sbc": dpSbc, "rsc": dpRsc,
	"tst": dpTst, "teq": dpTeq, "cmp": dpCmp, "cmn": dpCmn,
	"orr": dpOrr, "mov": dpMov, "bic": dpBic, "mvn": dpMvn,
}

// registerDataProc installs every data-processing mnemonic, in both its
// flag-setting ("adds") and flag-preserving ("add") forms. TST/TEQ/CMP/
// CMN always set flags and are only ever registered under their bare
// name.
func registerDataProc(d *Dispatcher) {
	for name, kind := range dpMnemonics {
		kind := kind
		spec := dpTable[kind]
		if !spec.writesRd {
			d.register(name, func(tb *TBuilder, instr arm.Instruction) error {
				return translateDataProc(tb, instr, spec, true)
			})
			continue
		}
		d.register(name, func(tb *TBuilder, instr arm.Instruction) error {
			return translateDataProc(tb, instr, spec, false)
		})
		d.register(name+"s", func(tb *TBuilder, instr arm.Instruction) error {
			return translateDataProc(tb, instr, spec, true)
		})
	}
}

func translateDataProc(tb *TBuilder, instr arm.Instruction, spec dpSpec, setFlags bool) error {
	var rdOp, rnOp, op2Arm arm.Operand
	ops := instr.Operands
	switch {
	case spec.writesRd && spec.hasRn:
		if len(ops) != 3 {
			return NewInvalidOperand("data-processing instruction: expected 3 operands, got %d", len(ops))
		}
		rdOp, rnOp, op2Arm = ops[0], ops[1], ops[2]
	case spec.writesRd && !spec.hasRn:
		if len(ops) != 2 {
			return NewInvalidOperand("data-processing move: expected 2 operands, got %d", len(ops))
		}
		rdOp, op2Arm = ops[0], ops[1]
	default: // flags-only compare: Rn, Op2
		if len(ops) != 2 {
			return NewInvalidOperand("data-processing compare: expected 2 operands, got %d", len(ops))
		}
		rnOp, op2Arm = ops[0], ops[1]
	}

	op2, err := tb.Read(op2Arm)
	if err != nil {
		return err
	}
	width := op2.Width()

	var rn reil.Operand
	if spec.hasRn {
		rn, err = tb.Read(rnOp)
		if err != nil {
			return err
		}
		width = maxWidth(width, rn.Width())
	}

	fe := NewFlagEngine()
	var result reil.Operand

	switch spec.kind {
	case dpAnd, dpTst:
		result = tb.AndRegs(rn, op2)
	case dpEor, dpTeq:
		result = tb.XorRegs(rn, op2)
	case dpOrr:
		result = tb.OrRegs(rn, op2)
	case dpBic:
		notOp2 := tb.Temporal(width)
		tb.Add(tb.ir.Xor(widen(tb, op2, width), tb.Immediate(widthMask(width), width), notOp2))
		result = tb.AndRegs(rn, notOp2)
	case dpMov:
		result = widen(tb, op2, width)
	case dpMvn:
		dst := tb.Temporal(width)
		tb.Add(tb.ir.Xor(widen(tb, op2, width), tb.Immediate(widthMask(width), width), dst))
		result = dst
	case dpAdd, dpCmn:
		dst := tb.Temporal(width)
		tb.Add(tb.ir.Add(widen(tb, rn, width), widen(tb, op2, width), dst))
		result = dst
	case dpSub, dpCmp:
		dst := tb.Temporal(width)
		tb.Add(tb.ir.Sub(widen(tb, rn, width), widen(tb, op2, width), dst))
		result = dst
	case dpRsb:
		dst := tb.Temporal(width)
		tb.Add(tb.ir.Sub(widen(tb, op2, width), widen(tb, rn, width), dst))
		result = dst
	case dpAdc:
		carry := widen(tb, flagReg(reil.FlagC), width)
		partial := tb.Temporal(width)
		tb.Add(tb.ir.Add(widen(tb, rn, width), widen(tb, op2, width), partial))
		dst := tb.Temporal(width)
		tb.Add(tb.ir.Add(partial, carry, dst))
		result = dst
	case dpSbc:
		// Rd = Rn - Op2 - NOT(C) = Rn - Op2 + C - 1
		carry := widen(tb, flagReg(reil.FlagC), width)
		partial := tb.Temporal(width)
		tb.Add(tb.ir.Sub(widen(tb, rn, width), widen(tb, op2, width), partial))
		withCarry := tb.Temporal(width)
		tb.Add(tb.ir.Add(partial, carry, withCarry))
		dst := tb.Temporal(width)
		tb.Add(tb.ir.Sub(withCarry, tb.Immediate(1, width), dst))
		result = dst
	case dpRsc:
		carry := widen(tb, flagReg(reil.FlagC), width)
		partial := tb.Temporal(width)
		tb.Add(tb.ir.Sub(widen(tb, op2, width), widen(tb, rn, width), partial))
		withCarry := tb.Temporal(width)
		tb.Add(tb.ir.Add(partial, carry, withCarry))
		dst := tb.Temporal(width)
		tb.Add(tb.ir.Sub(withCarry, tb.Immediate(1, width), dst))
		result = dst
	default:
		return NewNotImplemented("data-processing kind %d", spec.kind)
	}

	if spec.writesRd {
		if err := tb.Write(rdOp, result); err != nil {
			return err
		}
	}

	if setFlags {
		switch {
		case spec.arithmetic && !spec.isSub:
			fe.DataProcAdd(tb, rn, op2, result, width)
		case spec.arithmetic && spec.isSub:
			if spec.kind == dpRsb || spec.kind == dpRsc {
				fe.DataProcSub(tb, op2, rn, result, width)
			} else {
				fe.DataProcSub(tb, rn, op2, result, width)
			}
		default:
			carryOut, _ := fe.ShifterCarryOut(tb, op2Arm, width)
			fe.DataProcOther(tb, result, width, carryOut)
		}
	}
	return nil
}
