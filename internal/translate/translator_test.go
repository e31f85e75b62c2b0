package translate

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/student/armreil/internal/arm"
	"github.com/student/armreil/internal/reil"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}

func reg(name string) arm.Operand { return arm.Register{Name: name, Bits: 32} }

func addrsIncreasing(t *testing.T, seq []reil.Instruction) {
	t.Helper()
	for i := 1; i < len(seq); i++ {
		if seq[i].Address <= seq[i-1].Address {
			t.Fatalf("REIL addresses must strictly increase: seq[%d]=%#x <= seq[%d]=%#x", i, seq[i].Address, i-1, seq[i-1].Address)
		}
	}
}

func TestTranslateUnconditionalAddSetsFlags(t *testing.T) {
	tr := NewTranslator(discardLogger())
	instr := arm.Instruction{
		Mnemonic: "adds",
		Operands: []arm.Operand{reg("r0"), reg("r1"), reg("r2")},
		Address:  0x1000,
		Size:     4,
	}
	seq, err := tr.Translate(instr)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(seq) == 0 {
		t.Fatalf("expected a non-empty REIL sequence")
	}
	addrsIncreasing(t, seq)

	var sawAdd, sawCarryStr bool
	for _, in := range seq {
		if in.Opcode == reil.Add {
			sawAdd = true
		}
		if in.Opcode == reil.Str {
			if r, ok := in.Op2.(reil.Register); ok && r.Name == reil.FlagC {
				sawCarryStr = true
			}
		}
	}
	if !sawAdd {
		t.Errorf("expected an add opcode in the sequence")
	}
	if !sawCarryStr {
		t.Errorf("adds must write the carry flag")
	}
}

func TestTranslateConditionalInstructionGatesWithJcc(t *testing.T) {
	tr := NewTranslator(discardLogger())
	eq := arm.EQ
	instr := arm.Instruction{
		Mnemonic: "add",
		Cond:     &eq,
		Operands: []arm.Operand{reg("r0"), reg("r1"), reg("r2")},
		Address:  0x2000,
		Size:     4,
	}
	seq, err := tr.Translate(instr)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	// The CondGate prologue opens the sequence: the negation of zf, then
	// the jcc that skips to the end of the instruction.
	if seq[0].Opcode != reil.Xor {
		t.Fatalf("conditional non-branch instruction must start with the CondGate negation, got %v", seq[0].Opcode)
	}
	if seq[1].Opcode != reil.Jcc {
		t.Fatalf("conditional non-branch instruction must follow the negation with the CondGate jcc, got %v", seq[1].Opcode)
	}
}

func TestTranslateBranchBypassesCondGatePrologueShape(t *testing.T) {
	tr := NewTranslator(discardLogger())
	eq := arm.EQ
	instr := arm.Instruction{
		Mnemonic: "b",
		Cond:     &eq,
		Operands: []arm.Operand{arm.Immediate{Value: 0x3010, Bits: 32}},
		Address:  0x3000,
		Size:     4,
	}
	seq, err := tr.Translate(instr)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	// Branch's own jcc carries the real condition predicate and target,
	// not a negated skip-to-end-of-instruction jump.
	if seq[len(seq)-1].Opcode != reil.Jcc {
		t.Fatalf("branch translation must end in a jcc")
	}
}

// TestTranslateConditionalBLGatesLinkWriteBehindPredicate ensures a
// conditional bl (e.g. bleq) does not clobber lr when its condition is
// false: ARM gives the instruction no effect at all in that case, so
// the str into r14 must be reachable only through the same predicate
// that gates the jump, not emitted unconditionally ahead of it.
func TestTranslateConditionalBLGatesLinkWriteBehindPredicate(t *testing.T) {
	tr := NewTranslator(discardLogger())
	eq := arm.EQ
	instr := arm.Instruction{
		Mnemonic: "bl",
		Cond:     &eq,
		Operands: []arm.Operand{arm.Immediate{Value: 0x9010, Bits: 32}},
		Address:  0x9000,
		Size:     4,
	}
	seq, err := tr.Translate(instr)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	lrWriteIdx, finalJccIdx := -1, -1
	for i, in := range seq {
		if in.Opcode == reil.Str {
			if dst, ok := in.Op2.(reil.Register); ok && dst.Name == "r14" {
				lrWriteIdx = i
			}
		}
		if in.Opcode == reil.Jcc {
			finalJccIdx = i
		}
	}
	if lrWriteIdx == -1 {
		t.Fatalf("expected a str into r14 (the link), got %+v", seq)
	}
	if finalJccIdx == -1 || finalJccIdx <= lrWriteIdx {
		t.Fatalf("expected the branch's own jcc after the (now-gated) lr write")
	}
	// A guard jcc must exist before the lr write: that's what makes the
	// write skippable when the condition is false, instead of running
	// unconditionally before the branch is even tested.
	sawGuardBeforeWrite := false
	for i := 0; i < lrWriteIdx; i++ {
		if seq[i].Opcode == reil.Jcc {
			sawGuardBeforeWrite = true
		}
	}
	if !sawGuardBeforeWrite {
		t.Fatalf("lr write at item %d has no guarding jcc before it, got %+v", lrWriteIdx, seq)
	}
}

func TestTranslateUnknownMnemonicEmitsSingleUnkn(t *testing.T) {
	tr := NewTranslator(discardLogger())
	instr := arm.Instruction{Mnemonic: "wfi", Address: 0x4000, Size: 4}
	seq, err := tr.Translate(instr)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(seq) != 1 || seq[0].Opcode != reil.Unkn {
		t.Fatalf("unknown mnemonic should produce exactly one unkn instruction, got %+v", seq)
	}
}

func TestTranslateSoftwareInterruptRecoversToUnkn(t *testing.T) {
	tr := NewTranslator(discardLogger())
	instr := arm.Instruction{Mnemonic: "swi", Operands: []arm.Operand{arm.Immediate{Value: 0, Bits: 24}}, Address: 0x5000, Size: 4}
	seq, err := tr.Translate(instr)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(seq) != 1 || seq[0].Opcode != reil.Unkn {
		t.Fatalf("swi should recover into a single unkn, got %+v", seq)
	}
}

func TestTranslateMovesLoadStoreAndBlockTransfer(t *testing.T) {
	tr := NewTranslator(discardLogger())

	mem := arm.Memory{Base: arm.Register{Name: "r0", Bits: 32}, Index: arm.IndexOffset, Bits: 32}
	ldr := arm.Instruction{Mnemonic: "ldr", Operands: []arm.Operand{reg("r1"), mem}, Address: 0x6000, Size: 4}
	if _, err := tr.Translate(ldr); err != nil {
		t.Fatalf("Translate(ldr): %v", err)
	}

	str := arm.Instruction{Mnemonic: "str", Operands: []arm.Operand{reg("r1"), mem}, Address: 0x6004, Size: 4}
	if _, err := tr.Translate(str); err != nil {
		t.Fatalf("Translate(str): %v", err)
	}

	list := arm.RegisterList{Ranges: []arm.RegisterRange{{Start: "r0", End: "r2"}}}
	stm := arm.Instruction{Mnemonic: "stmia", Operands: []arm.Operand{reg("r13"), list}, Address: 0x6008, Size: 4}
	seq, err := tr.Translate(stm)
	if err != nil {
		t.Fatalf("Translate(stmia): %v", err)
	}
	count := 0
	for _, in := range seq {
		if in.Opcode == reil.Stm {
			count++
		}
	}
	if count != 3 {
		t.Fatalf("stmia {r0-r2} should emit 3 stm instructions, got %d", count)
	}
}

func TestTranslateMulSetsOnlyZN(t *testing.T) {
	tr := NewTranslator(discardLogger())
	instr := arm.Instruction{
		Mnemonic: "muls",
		Operands: []arm.Operand{reg("r0"), reg("r1"), reg("r2")},
		Address:  0x7000,
		Size:     4,
	}
	seq, err := tr.Translate(instr)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	for _, in := range seq {
		if in.Opcode != reil.Str {
			continue
		}
		if r, ok := in.Op2.(reil.Register); ok && (r.Name == reil.FlagC || r.Name == reil.FlagV) {
			t.Fatalf("muls must not touch cf or vf")
		}
	}
}

// TestTranslatePostIndexedLoadReadsBeforeWriteback covers spec §8
// scenario 6 (`LDR r0, [r1], #4` with r1=0x1000 must load from 0x1000,
// then r1 becomes 0x1004): the ldm that performs the load must be
// emitted before the str that writes the incremented base back into
// r1, and the ldm's address operand must not be r1 itself (which the
// writeback str mutates).
func TestTranslatePostIndexedLoadReadsBeforeWriteback(t *testing.T) {
	tr := NewTranslator(discardLogger())
	mem := arm.Memory{
		Base:  arm.Register{Name: "r1", Bits: 32},
		Disp:  arm.Immediate{Value: 4, Bits: 32},
		Index: arm.IndexPost,
		Bits:  32,
	}
	instr := arm.Instruction{
		Mnemonic: "ldr",
		Operands: []arm.Operand{reg("r0"), mem},
		Address:  0x9000,
		Size:     4,
	}
	seq, err := tr.Translate(instr)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	ldmIdx, writebackIdx := -1, -1
	var ldmAddr reil.Operand
	for i, in := range seq {
		if in.Opcode == reil.Ldm {
			ldmIdx = i
			ldmAddr = in.Op0
		}
		if in.Opcode == reil.Str {
			if dst, ok := in.Op2.(reil.Register); ok && dst.Name == "r1" {
				writebackIdx = i
			}
		}
	}
	if ldmIdx == -1 || writebackIdx == -1 {
		t.Fatalf("expected both an ldm and an r1 writeback str, got %+v", seq)
	}
	if ldmIdx >= writebackIdx {
		t.Fatalf("ldm (item %d) must precede the base writeback str (item %d)", ldmIdx, writebackIdx)
	}
	if r, ok := ldmAddr.(reil.Register); ok && r.Name == "r1" {
		t.Fatalf("ldm must read from a snapshot of the original r1, not r1 itself")
	}
}

// TestTranslateMovsLSLByRegisterEmitsCutoffBranch covers spec §8 scenario
// 4 (`MOVS r0, r1, LSL r2`): the value path must branch on amt8 >= 33,
// and the sequence must still carry a str into r0.
func TestTranslateMovsLSLByRegisterEmitsCutoffBranch(t *testing.T) {
	tr := NewTranslator(discardLogger())
	sr := arm.ShiftedRegister{
		Base:   arm.Register{Name: "r1", Bits: 32},
		Type:   arm.LSL,
		Amount: arm.Register{Name: "r2", Bits: 32},
		Bits:   32,
	}
	instr := arm.Instruction{
		Mnemonic: "movs",
		Operands: []arm.Operand{reg("r0"), sr},
		Address:  0x8000,
		Size:     4,
	}
	seq, err := tr.Translate(instr)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	addrsIncreasing(t, seq)

	var sawJcc, sawR0Store bool
	for _, in := range seq {
		if in.Opcode == reil.Jcc {
			sawJcc = true
		}
		if in.Opcode == reil.Str {
			if r, ok := in.Op2.(reil.Register); ok && r.Name == "r0" {
				sawR0Store = true
			}
		}
	}
	if !sawJcc {
		t.Fatalf("register-amount LSL must emit the cutoff-branch jcc")
	}
	if !sawR0Store {
		t.Fatalf("movs must still write its result into r0")
	}
}

func TestDispatcherCoversAllDataProcessingMnemonics(t *testing.T) {
	d := NewDispatcher()
	for name := range dpMnemonics {
		if _, ok := d.Lookup(name); !ok {
			t.Errorf("dispatcher missing mnemonic %q", name)
		}
	}
}
