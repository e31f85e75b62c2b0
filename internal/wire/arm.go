// Package wire holds the JSON/YAML record shapes the CLI reads and
// writes. arm.Operand and reil.Operand are tagged-variant interfaces
// with no exported fields of their own, so the wire format uses a flat
// DTO with a "type" discriminator instead of relying on either
// encoding's native interface support (spec §9, out of scope for the
// core translator itself).
package wire

import (
	"fmt"

	"github.com/student/armreil/internal/arm"
)

// OperandDTO is the flat, discriminated-union wire shape for an
// arm.Operand. Only the fields relevant to Type are populated.
type OperandDTO struct {
	Type      string      `json:"type" yaml:"type"`
	Value     int64       `json:"value,omitempty" yaml:"value,omitempty"`
	Name      string      `json:"name,omitempty" yaml:"name,omitempty"`
	Bits      uint8       `json:"bits,omitempty" yaml:"bits,omitempty"`
	Base      *OperandDTO `json:"base,omitempty" yaml:"base,omitempty"`
	Shift     string      `json:"shift,omitempty" yaml:"shift,omitempty"`
	Amount    *OperandDTO `json:"amount,omitempty" yaml:"amount,omitempty"`
	Disp      *OperandDTO `json:"disp,omitempty" yaml:"disp,omitempty"`
	DispMinus bool        `json:"disp_minus,omitempty" yaml:"disp_minus,omitempty"`
	Index     string      `json:"index,omitempty" yaml:"index,omitempty"`
	Ranges    []RangeDTO  `json:"ranges,omitempty" yaml:"ranges,omitempty"`
}

// RangeDTO mirrors arm.RegisterRange.
type RangeDTO struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
}

// InstructionDTO is the wire shape for one arm.Instruction.
type InstructionDTO struct {
	Mnemonic string       `json:"mnemonic" yaml:"mnemonic"`
	Cond     string       `json:"cond,omitempty" yaml:"cond,omitempty"`
	Address  uint64       `json:"address" yaml:"address"`
	Size     uint8        `json:"size" yaml:"size"`
	Thumb    bool         `json:"thumb,omitempty" yaml:"thumb,omitempty"`
	Operands []OperandDTO `json:"operands" yaml:"operands"`
}

var conditionNames = map[string]arm.Condition{
	"eq": arm.EQ, "ne": arm.NE, "cs": arm.CS, "hs": arm.HS, "cc": arm.CC, "lo": arm.LO,
	"mi": arm.MI, "pl": arm.PL, "vs": arm.VS, "vc": arm.VC, "hi": arm.HI, "ls": arm.LS,
	"ge": arm.GE, "lt": arm.LT, "gt": arm.GT, "le": arm.LE, "al": arm.AL,
}

// ToInstruction converts a wire record into the domain type the
// translator consumes.
func (d InstructionDTO) ToInstruction() (arm.Instruction, error) {
	ops := make([]arm.Operand, 0, len(d.Operands))
	for i, o := range d.Operands {
		conv, err := o.toOperand()
		if err != nil {
			return arm.Instruction{}, fmt.Errorf("operand %d: %w", i, err)
		}
		ops = append(ops, conv)
	}

	instr := arm.Instruction{
		Mnemonic: d.Mnemonic,
		Operands: ops,
		Address:  d.Address,
		Size:     d.Size,
		Thumb:    d.Thumb,
	}
	if d.Cond != "" {
		c, ok := conditionNames[d.Cond]
		if !ok {
			return arm.Instruction{}, fmt.Errorf("unrecognized condition %q", d.Cond)
		}
		instr.Cond = &c
	}
	return instr, nil
}

func (o OperandDTO) toOperand() (arm.Operand, error) {
	switch o.Type {
	case "immediate":
		return arm.Immediate{Value: o.Value, Bits: o.Bits}, nil
	case "register":
		return arm.Register{Name: o.Name, Bits: o.Bits}, nil
	case "shifted_register":
		if o.Base == nil {
			return nil, fmt.Errorf("shifted_register requires base")
		}
		base, err := o.Base.toOperand()
		if err != nil {
			return nil, err
		}
		baseReg, ok := base.(arm.Register)
		if !ok {
			return nil, fmt.Errorf("shifted_register base must be a register")
		}
		shiftType, err := parseShiftType(o.Shift)
		if err != nil {
			return nil, err
		}
		var amount arm.Operand
		if o.Amount != nil {
			amount, err = o.Amount.toOperand()
			if err != nil {
				return nil, err
			}
		}
		return arm.ShiftedRegister{Base: baseReg, Type: shiftType, Amount: amount, Bits: o.Bits}, nil
	case "memory":
		if o.Base == nil {
			return nil, fmt.Errorf("memory requires base")
		}
		base, err := o.Base.toOperand()
		if err != nil {
			return nil, err
		}
		baseReg, ok := base.(arm.Register)
		if !ok {
			return nil, fmt.Errorf("memory base must be a register")
		}
		var disp arm.Operand
		if o.Disp != nil {
			disp, err = o.Disp.toOperand()
			if err != nil {
				return nil, err
			}
		}
		index, err := parseIndexMode(o.Index)
		if err != nil {
			return nil, err
		}
		return arm.Memory{Base: baseReg, Disp: disp, DispMinus: o.DispMinus, Index: index, Bits: o.Bits}, nil
	case "register_list":
		ranges := make([]arm.RegisterRange, 0, len(o.Ranges))
		for _, r := range o.Ranges {
			ranges = append(ranges, arm.RegisterRange{Start: r.Start, End: r.End})
		}
		return arm.RegisterList{Ranges: ranges}, nil
	default:
		return nil, fmt.Errorf("unrecognized operand type %q", o.Type)
	}
}

func parseShiftType(s string) (arm.ShiftType, error) {
	switch s {
	case "lsl":
		return arm.LSL, nil
	case "lsr":
		return arm.LSR, nil
	case "asr":
		return arm.ASR, nil
	case "ror":
		return arm.ROR, nil
	case "rrx":
		return arm.RRX, nil
	default:
		return 0, fmt.Errorf("unrecognized shift type %q", s)
	}
}

func parseIndexMode(s string) (arm.IndexMode, error) {
	switch s {
	case "pre":
		return arm.IndexPre, nil
	case "offset", "":
		return arm.IndexOffset, nil
	case "post":
		return arm.IndexPost, nil
	default:
		return 0, fmt.Errorf("unrecognized index mode %q", s)
	}
}
