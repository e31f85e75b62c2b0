package translate

import (
	"testing"

	"github.com/student/armreil/internal/arm"
	"github.com/student/armreil/internal/reil"
)

func TestCondGateNoOpForAL(t *testing.T) {
	tb := newTestTBuilder()
	gate := NewCondGate()
	instr := arm.Instruction{Address: 0x1000, Size: 4}
	gate.Emit(tb, instr, arm.AL)
	if len(tb.items) != 0 {
		t.Fatalf("CondGate.Emit(AL) should emit nothing, got %d items", len(tb.items))
	}
}

func TestCondGateEmitsNegatedJccToEndOfInstruction(t *testing.T) {
	tb := newTestTBuilder()
	gate := NewCondGate()
	instr := arm.Instruction{Address: 0x1000, Size: 4}
	gate.Emit(tb, instr, arm.EQ)

	// EQ's predicate is zf itself, so the prologue is the 1-bit negation
	// of zf followed by the jcc that consumes it.
	if len(tb.items) != 2 {
		t.Fatalf("expected exactly two buffered items (negation, jcc), got %d", len(tb.items))
	}
	if neg := tb.items[0].instr; neg.Opcode != reil.Xor {
		t.Fatalf("CondGate should negate the predicate first, got %v", neg.Opcode)
	}
	jcc := tb.items[1].instr
	if jcc.Opcode != reil.Jcc {
		t.Fatalf("CondGate should emit a jcc, got %v", jcc.Opcode)
	}
	target, ok := jcc.Op2.(reil.Immediate)
	if !ok {
		t.Fatalf("jcc target = %T, want reil.Immediate", jcc.Op2)
	}
	wantAddr := (instr.Address + uint64(instr.Size)) << 8
	if target.Value != wantAddr {
		t.Fatalf("jcc target = %#x, want %#x (next instruction's address, sub-index 0)", target.Value, wantAddr)
	}
}

func TestPredicateTableCoversEveryCondition(t *testing.T) {
	tb := newTestTBuilder()
	gate := NewCondGate()
	conds := []arm.Condition{
		arm.EQ, arm.NE, arm.CS, arm.CC, arm.MI, arm.PL, arm.VS, arm.VC,
		arm.HI, arm.LS, arm.GE, arm.LT, arm.GT, arm.LE,
	}
	for _, c := range conds {
		pred := gate.predicate(tb, c)
		if pred == nil || pred.Width() != 1 {
			t.Errorf("predicate(%v) = %#v, want a 1-bit value", c, pred)
		}
	}
}
