package translate

import (
	"github.com/student/armreil/internal/arm"
)

// translateLoadStore implements single data transfer: ldr/ldrb/ldrh load
// Rd from a Memory operand, str/strb/strh store Rd to it. Width comes
// from the Memory operand itself (the decoder already narrows Bits for
// the byte/halfword suffix), not from the mnemonic text.
func translateLoadStore(tb *TBuilder, instr arm.Instruction, load bool) error {
	if len(instr.Operands) != 2 {
		return NewInvalidOperand("load/store: expected 2 operands, got %d", len(instr.Operands))
	}
	rd, mem := instr.Operands[0], instr.Operands[1]
	if _, ok := mem.(arm.Memory); !ok {
		return NewInvalidOperand("load/store: second operand must be memory, got %T", mem)
	}

	if load {
		value, err := tb.Read(mem)
		if err != nil {
			return err
		}
		return tb.Write(rd, value)
	}

	value, err := tb.Read(rd)
	if err != nil {
		return err
	}
	return tb.Write(mem, value)
}

func registerLoadStore(d *Dispatcher) {
	for _, name := range []string{"ldr", "ldrb", "ldrh", "ldrsb", "ldrsh"} {
		d.register(name, func(tb *TBuilder, instr arm.Instruction) error {
			return translateLoadStore(tb, instr, true)
		})
	}
	for _, name := range []string{"str", "strb", "strh"} {
		d.register(name, func(tb *TBuilder, instr arm.Instruction) error {
			return translateLoadStore(tb, instr, false)
		})
	}
}
