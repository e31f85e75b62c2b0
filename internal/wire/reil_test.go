package wire

import (
	"testing"

	"github.com/student/armreil/internal/reil"
)

func TestFromInstruction(t *testing.T) {
	in := reil.Instruction{
		Address: 0x100000,
		Opcode:  reil.Add,
		Op0:     reil.Register{Name: "r0", Bits: 32},
		Op1:     reil.Immediate{Value: 1, Bits: 32},
		Op2:     reil.Register{Name: "t0", Bits: 32},
	}
	dto := FromInstruction(in)
	if dto.Opcode != "add" {
		t.Errorf("Opcode = %q, want add", dto.Opcode)
	}
	if dto.Op0.Kind != "register" || dto.Op0.Name != "r0" {
		t.Errorf("Op0 = %+v", dto.Op0)
	}
	if dto.Op1.Kind != "immediate" || dto.Op1.Value != 1 {
		t.Errorf("Op1 = %+v", dto.Op1)
	}
}

func TestFromInstructionEmptyOperand(t *testing.T) {
	in := reil.Instruction{Opcode: reil.Unkn, Op0: reil.Empty{}, Op1: reil.Empty{}, Op2: reil.Empty{}}
	dto := FromInstruction(in)
	if dto.Op0.Kind != "empty" {
		t.Errorf("Op0.Kind = %q, want empty", dto.Op0.Kind)
	}
}
