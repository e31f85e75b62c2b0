package reil

// Builder is a pure factory for REIL instructions: each method builds
// one Instruction record with Address left at zero — TBuilder assigns
// real addresses when it finalizes a sequence (spec §4.2). Builder
// holds no state and width-checks nothing; it is the caller's job
// (TBuilder, OperandMat, FlagEngine) to emit only well-typed operands.
type Builder struct{}

// NewBuilder returns a stateless REIL instruction factory.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Add(a, c, d Operand) Instruction { return Instruction{Opcode: Add, Op0: a, Op1: c, Op2: d} }
func (b *Builder) Sub(a, c, d Operand) Instruction { return Instruction{Opcode: Sub, Op0: a, Op1: c, Op2: d} }
func (b *Builder) Mul(a, c, d Operand) Instruction { return Instruction{Opcode: Mul, Op0: a, Op1: c, Op2: d} }
func (b *Builder) Div(a, c, d Operand) Instruction { return Instruction{Opcode: Div, Op0: a, Op1: c, Op2: d} }
func (b *Builder) Mod(a, c, d Operand) Instruction { return Instruction{Opcode: Mod, Op0: a, Op1: c, Op2: d} }
func (b *Builder) And(a, c, d Operand) Instruction { return Instruction{Opcode: And, Op0: a, Op1: c, Op2: d} }
func (b *Builder) Or(a, c, d Operand) Instruction  { return Instruction{Opcode: Or, Op0: a, Op1: c, Op2: d} }
func (b *Builder) Xor(a, c, d Operand) Instruction { return Instruction{Opcode: Xor, Op0: a, Op1: c, Op2: d} }

// Bsh shifts a by signed amount s (negative shifts right) into d.
func (b *Builder) Bsh(a, s, d Operand) Instruction {
	return Instruction{Opcode: Bsh, Op0: a, Op1: s, Op2: d}
}

// Ldm loads w(d) bits from memory at addr into d.
func (b *Builder) Ldm(addr, d Operand) Instruction {
	return Instruction{Opcode: Ldm, Op0: addr, Op1: Empty{}, Op2: d}
}

// Stm stores w(v) bits of v into memory at addr.
func (b *Builder) Stm(v, addr Operand) Instruction {
	return Instruction{Opcode: Stm, Op0: v, Op1: Empty{}, Op2: addr}
}

// Str zero-extends (or copies) s into d.
func (b *Builder) Str(s, d Operand) Instruction {
	return Instruction{Opcode: Str, Op0: s, Op1: Empty{}, Op2: d}
}

// Bisz sets 1-bit d to 1 when a == 0, else 0.
func (b *Builder) Bisz(a, d Operand) Instruction {
	return Instruction{Opcode: Bisz, Op0: a, Op1: Empty{}, Op2: d}
}

// Jcc transfers control to target when the 1-bit cond operand is
// nonzero; target may be an Immediate (resolved address) or a Register.
func (b *Builder) Jcc(cond, target Operand) Instruction {
	return Instruction{Opcode: Jcc, Op0: cond, Op1: Empty{}, Op2: target}
}

// Undef marks a register's value as undefined.
func (b *Builder) Undef(d Operand) Instruction {
	return Instruction{Opcode: Undef, Op0: Empty{}, Op1: Empty{}, Op2: d}
}

// Unkn is an opaque placeholder emitted when translation cannot proceed.
func (b *Builder) Unkn() Instruction {
	return Instruction{Opcode: Unkn, Op0: Empty{}, Op1: Empty{}, Op2: Empty{}}
}

// Nop performs no operation; used by higher-level helpers that need a
// label target with no associated side effect.
func (b *Builder) Nop() Instruction {
	return Instruction{Opcode: Nop, Op0: Empty{}, Op1: Empty{}, Op2: Empty{}}
}
