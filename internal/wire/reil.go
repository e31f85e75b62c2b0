package wire

import "github.com/student/armreil/internal/reil"

// ReilOperandDTO is the flat wire shape for a reil.Operand.
type ReilOperandDTO struct {
	Kind  string `json:"kind" yaml:"kind"`
	Value uint64 `json:"value,omitempty" yaml:"value,omitempty"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Bits  uint8  `json:"bits,omitempty" yaml:"bits,omitempty"`
}

// ReilInstructionDTO is the wire shape for one reil.Instruction.
type ReilInstructionDTO struct {
	Address uint64         `json:"address" yaml:"address"`
	Opcode  string         `json:"opcode" yaml:"opcode"`
	Op0     ReilOperandDTO `json:"op0" yaml:"op0"`
	Op1     ReilOperandDTO `json:"op1" yaml:"op1"`
	Op2     ReilOperandDTO `json:"op2" yaml:"op2"`
}

// FromInstruction converts a translated REIL instruction into its wire
// record.
func FromInstruction(in reil.Instruction) ReilInstructionDTO {
	return ReilInstructionDTO{
		Address: in.Address,
		Opcode:  in.Opcode.String(),
		Op0:     fromOperand(in.Op0),
		Op1:     fromOperand(in.Op1),
		Op2:     fromOperand(in.Op2),
	}
}

func fromOperand(op reil.Operand) ReilOperandDTO {
	switch v := op.(type) {
	case reil.Immediate:
		return ReilOperandDTO{Kind: "immediate", Value: v.Value, Bits: v.Bits}
	case reil.Register:
		return ReilOperandDTO{Kind: "register", Name: v.Name, Bits: v.Bits}
	case reil.Empty:
		return ReilOperandDTO{Kind: "empty"}
	default:
		return ReilOperandDTO{Kind: "unknown"}
	}
}
