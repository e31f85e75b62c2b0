package translate

import (
	"strings"

	"github.com/student/armreil/internal/arm"
	"github.com/student/armreil/internal/reil"
)

// blockAddressing is one of the four ARM block-transfer variants
// (increment/decrement, before/after), named by the ia/ib/da/db suffix
// on the mnemonic. ia is the default when the decoder emits no suffix.
type blockAddressing int

const (
	blockIA blockAddressing = iota
	blockIB
	blockDA
	blockDB
)

func parseBlockMnemonic(mnemonic string) (addressing blockAddressing, writeback bool) {
	m := mnemonic
	if strings.HasSuffix(m, "!") {
		writeback = true
		m = strings.TrimSuffix(m, "!")
	}
	switch {
	case strings.HasSuffix(m, "ib"):
		addressing = blockIB
	case strings.HasSuffix(m, "da"):
		addressing = blockDA
	case strings.HasSuffix(m, "db"):
		addressing = blockDB
	default:
		addressing = blockIA
	}
	return addressing, writeback
}

// translateBlock implements LDM/STM (spec §9, supplemented from
// original_source/'s _translate_ldm / _translate_stm): registers are
// always transferred in ascending numeric order regardless of direction,
// the addressing mode only changes where the first transfer address
// falls relative to the base register (GLOSSARY, "block transfer").
func translateBlock(tb *TBuilder, instr arm.Instruction, load bool) error {
	if len(instr.Operands) != 2 {
		return NewInvalidOperand("block transfer: expected 2 operands, got %d", len(instr.Operands))
	}
	baseOp, ok := instr.Operands[0].(arm.Register)
	if !ok {
		return NewInvalidOperand("block transfer: first operand must be a register, got %T", instr.Operands[0])
	}
	listOp, ok := instr.Operands[1].(arm.RegisterList)
	if !ok {
		return NewInvalidOperand("block transfer: second operand must be a register list, got %T", instr.Operands[1])
	}

	regs, err := ExpandRegisterList(listOp)
	if err != nil {
		return err
	}
	if len(regs) == 0 {
		return NewInvalidOperand("block transfer: empty register list")
	}

	addressing, writeback := parseBlockMnemonic(instr.Mnemonic)
	base := reil.Register{Name: baseOp.Name, Bits: baseOp.Bits}
	n := uint64(len(regs))

	var startOffset, finalOffset int64
	switch addressing {
	case blockIA:
		startOffset, finalOffset = 0, int64(4*n)
	case blockIB:
		startOffset, finalOffset = 4, int64(4*n)
	case blockDA:
		startOffset, finalOffset = -4*(int64(n)-1), -int64(4*n)
	case blockDB:
		startOffset, finalOffset = -int64(4*n), -int64(4*n)
	}

	for i, reg := range regs {
		offset := startOffset + int64(4*i)
		addr := tb.offsetAddress(base, offset)
		if load {
			dst := tb.Temporal(32)
			tb.Add(tb.ir.Ldm(addr, dst))
			tb.Add(tb.ir.Str(dst, reg))
		} else {
			tb.Add(tb.ir.Stm(reg, addr))
		}
	}

	if writeback {
		newBase := tb.offsetAddress(base, finalOffset)
		tb.Add(tb.ir.Str(newBase, base))
	}
	return nil
}

// offsetAddress computes base + offset (offset may be negative) as a
// fresh 32-bit temporary.
func (tb *TBuilder) offsetAddress(base reil.Operand, offset int64) reil.Operand {
	if offset == 0 {
		return base
	}
	dst := tb.Temporal(32)
	if offset > 0 {
		tb.Add(tb.ir.Add(base, tb.Immediate(uint64(offset), 32), dst))
	} else {
		tb.Add(tb.ir.Sub(base, tb.Immediate(uint64(-offset), 32), dst))
	}
	return dst
}

func registerBlock(d *Dispatcher) {
	for _, suffix := range []string{"ia", "ib", "da", "db", "ia!", "ib!", "da!", "db!", ""} {
		name := "ldm" + suffix
		d.register(name, func(tb *TBuilder, instr arm.Instruction) error {
			return translateBlock(tb, instr, true)
		})
		name = "stm" + suffix
		d.register(name, func(tb *TBuilder, instr arm.Instruction) error {
			return translateBlock(tb, instr, false)
		})
	}
}
