package arm

// Operand is the tagged variant spec §3 describes: every ARM operand
// the decoder can hand the translator is one of the five concrete types
// below. The interface only exists so translator code can hold "an
// operand" before a type switch picks the real shape — same role
// GoBA's per-instruction-kind structs play for whole instructions.
type Operand interface {
	isOperand()
}

// Immediate is a literal value of a given bit-width.
type Immediate struct {
	Value int64
	Bits  uint8
}

func (Immediate) isOperand() {}

// Register is a symbolic ARM register name: "r0".."r15", or one of the
// aliases "sp" (r13), "lr" (r14), "pc" (r15) — resolution of the alias
// to a banked physical register is the decoder's job (spec §9); the
// translator only ever sees the name.
type Register struct {
	Name string
	Bits uint8
}

func (Register) isOperand() {}

// ShiftType is the barrel-shifter operation applied to a ShiftedRegister.
type ShiftType uint8

const (
	LSL ShiftType = iota
	LSR
	ASR
	ROR
	RRX
)

func (s ShiftType) String() string {
	switch s {
	case LSL:
		return "lsl"
	case LSR:
		return "lsr"
	case ASR:
		return "asr"
	case ROR:
		return "ror"
	case RRX:
		return "rrx"
	default:
		return "?"
	}
}

// ShiftedRegister is a base register put through the barrel shifter.
// Amount is nil for RRX (which shifts by a fixed one bit through carry)
// and otherwise an Immediate or a Register.
type ShiftedRegister struct {
	Base   Register
	Type   ShiftType
	Amount Operand
	Bits   uint8
}

func (ShiftedRegister) isOperand() {}

// IndexMode distinguishes the three ARM addressing-mode variants (spec
// §4.4.2, GLOSSARY).
type IndexMode uint8

const (
	IndexPre IndexMode = iota
	IndexOffset
	IndexPost
)

// Memory is a load/store address expression: Base plus an optional
// Displacement (Register, Immediate, or ShiftedRegister), subtracted
// instead of added when DispMinus is set.
type Memory struct {
	Base      Register
	Disp      Operand // nil when there is no displacement
	DispMinus bool
	Index     IndexMode
	Bits      uint8
}

func (Memory) isOperand() {}

// RegisterRange is one element of a RegisterList: either a single
// register (End == "") or an inclusive range of two endpoints.
type RegisterRange struct {
	Start string
	End   string
}

// RegisterList is the operand shape used by LDM/STM: an ordered list of
// register ranges that OperandMat expands into individual registers.
type RegisterList struct {
	Ranges []RegisterRange
}

func (RegisterList) isOperand() {}
