package translate

import (
	"testing"

	"github.com/student/armreil/internal/arm"
	"github.com/student/armreil/internal/reil"
)

func newTestTBuilder() *TBuilder {
	instr := arm.Instruction{Mnemonic: "mov", Address: 0x1000, Size: 4}
	return NewTBuilder(instr, reil.NewNameGen("t"))
}

func TestInstanciateAssignsSubAddresses(t *testing.T) {
	tb := newTestTBuilder()
	r0 := reil.Register{Name: "r0", Bits: 32}
	tb.Add(tb.ir.Str(tb.Immediate(1, 32), r0))
	tb.Add(tb.ir.Str(tb.Immediate(2, 32), r0))

	seq, err := tb.Instanciate(0x1000)
	if err != nil {
		t.Fatalf("Instanciate: %v", err)
	}
	if len(seq) != 2 {
		t.Fatalf("len(seq) = %d, want 2", len(seq))
	}
	if seq[0].Address != 0x100000 || seq[1].Address != 0x100001 {
		t.Fatalf("unexpected addresses: %#x, %#x", seq[0].Address, seq[1].Address)
	}
}

func TestInstanciateEmptyBufferIsAssertionViolation(t *testing.T) {
	tb := newTestTBuilder()
	_, err := tb.Instanciate(0x1000)
	if _, ok := err.(*AssertionViolationError); !ok {
		t.Fatalf("err = %v (%T), want *AssertionViolationError", err, err)
	}
}

func TestInstanciateResolvesForwardLabel(t *testing.T) {
	tb := newTestTBuilder()
	skip := tb.Label("skip")
	tb.JumpIfZero(tb.Immediate(0, 1), skip)
	tb.Add(tb.ir.Str(tb.Immediate(99, 32), reil.Register{Name: "r0", Bits: 32}))
	tb.AddLabel(skip)
	tb.Add(tb.ir.Nop())

	seq, err := tb.Instanciate(0x2000)
	if err != nil {
		t.Fatalf("Instanciate: %v", err)
	}
	// Bisz (from equalZero), Jcc, Str, Nop: four real instructions.
	if len(seq) != 4 {
		t.Fatalf("len(seq) = %d, want 4", len(seq))
	}
	jcc := seq[1]
	if jcc.Opcode != reil.Jcc {
		t.Fatalf("seq[1].Opcode = %v, want Jcc", jcc.Opcode)
	}
	target, ok := jcc.Op2.(reil.Immediate)
	if !ok {
		t.Fatalf("jcc target is %T, want reil.Immediate", jcc.Op2)
	}
	if target.Value != seq[3].Address {
		t.Fatalf("jcc target = %#x, want %#x (address of the nop after the label)", target.Value, seq[3].Address)
	}
}

func TestInstanciateTrailingLabelResolvesPastEnd(t *testing.T) {
	tb := newTestTBuilder()
	done := tb.Label("done")
	tb.JumpTo(done)
	tb.AddLabel(done)

	seq, err := tb.Instanciate(0x3000)
	if err != nil {
		t.Fatalf("Instanciate: %v", err)
	}
	jmp := seq[0]
	target := jmp.Op2.(reil.Immediate)
	wantEnd := (uint64(0x3000) << 8) | 1
	if target.Value != wantEnd {
		t.Fatalf("trailing label resolved to %#x, want %#x", target.Value, wantEnd)
	}
}

func TestGreaterThanOrEqual(t *testing.T) {
	tb := newTestTBuilder()
	ge := tb.GreaterThanOrEqual(tb.Immediate(5, 8), tb.Immediate(3, 8))
	if ge.Width() != 1 {
		t.Fatalf("GreaterThanOrEqual result width = %d, want 1", ge.Width())
	}
}

func TestEqualAndUnequalRegs(t *testing.T) {
	tb := newTestTBuilder()
	a := reil.Register{Name: "r0", Bits: 32}
	b := reil.Register{Name: "r1", Bits: 32}
	eq := tb.EqualRegs(a, b)
	neq := tb.UnequalRegs(a, b)
	if eq.Width() != 1 || neq.Width() != 1 {
		t.Fatalf("EqualRegs/UnequalRegs must return 1-bit values")
	}
}
