package arm

import "testing"

func TestShiftTypeString(t *testing.T) {
	cases := map[ShiftType]string{
		LSL: "lsl", LSR: "lsr", ASR: "asr", ROR: "ror", RRX: "rrx",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("ShiftType(%d).String() = %q, want %q", typ, got, want)
		}
	}
	var unknown ShiftType = 255
	if got := unknown.String(); got != "?" {
		t.Errorf("unknown ShiftType.String() = %q, want \"?\"", got)
	}
}

func TestOperandTaggedVariants(t *testing.T) {
	// Each concrete type must satisfy Operand; this is a compile-time
	// check as much as a runtime one.
	var ops = []Operand{
		Immediate{Value: 1, Bits: 32},
		Register{Name: "r0", Bits: 32},
		ShiftedRegister{Base: Register{Name: "r1", Bits: 32}, Type: LSL, Bits: 32},
		Memory{Base: Register{Name: "r2", Bits: 32}, Index: IndexOffset, Bits: 32},
		RegisterList{Ranges: []RegisterRange{{Start: "r0", End: "r3"}}},
	}
	if len(ops) != 5 {
		t.Fatalf("expected 5 operand variants")
	}
}
