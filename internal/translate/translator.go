package translate

import (
	"github.com/sirupsen/logrus"

	"github.com/student/armreil/internal/arm"
	"github.com/student/armreil/internal/reil"
)

// Translator is the top-level entry point: one decoded ARM instruction
// in, one REIL sequence out (spec §4.8). It owns the NameGen, which is
// the only state carried from one instruction to the next.
type Translator struct {
	dispatch *Dispatcher
	names    *reil.NameGen
	gate     *CondGate
	log      *logrus.Logger
}

// NewTranslator returns a Translator. A nil logger gets logrus's
// standard logger.
func NewTranslator(log *logrus.Logger) *Translator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Translator{
		dispatch: NewDispatcher(),
		names:    reil.NewNameGen("t"),
		gate:     NewCondGate(),
		log:      log,
	}
}

// Translate lowers one ARM instruction into its REIL sequence. Unknown
// mnemonics and recoverable routine errors become a single Unkn
// instruction rather than failing the whole batch (spec §7); an
// AssertionViolationError, or any other unrecognized error, is logged
// at error level and returned to the caller.
func (t *Translator) Translate(instr arm.Instruction) ([]reil.Instruction, error) {
	t.names.Reset()
	tb := NewTBuilder(instr, t.names)

	routine, ok := t.dispatch.Lookup(instr.Mnemonic)
	if !ok {
		t.log.WithField("mnemonic", instr.Mnemonic).Info("unknown mnemonic, emitting unkn")
		return t.unknown(instr)
	}

	if !arm.IsBranchFamily(instr.Mnemonic) {
		t.gate.Emit(tb, instr, instr.ConditionOrAL())
	}

	if err := routine(tb, instr); err != nil {
		if recoverable(err) {
			t.log.WithFields(logrus.Fields{
				"mnemonic": instr.Mnemonic,
				"address":  instr.Address,
				"reason":   err,
			}).Info("recovered translation failure, emitting unkn")
			return t.unknown(instr)
		}
		t.log.WithFields(logrus.Fields{
			"mnemonic": instr.Mnemonic,
			"address":  instr.Address,
			"reason":   err,
		}).Error("unrecoverable translation failure")
		return nil, err
	}

	if len(tb.items) == 0 {
		// A routine that wrote nothing (e.g. a no-op form) still needs a
		// buffer Instanciate can linearize.
		tb.Add(tb.ir.Nop())
	}
	seq, err := tb.Instanciate(instr.Address)
	if err != nil {
		t.log.WithFields(logrus.Fields{
			"mnemonic": instr.Mnemonic,
			"address":  instr.Address,
			"reason":   err,
		}).Error("unrecoverable translation failure")
		return nil, err
	}
	return seq, nil
}

// unknown builds the single-instruction unkn sequence the Translator
// falls back to for mnemonics it does not, or could not, translate.
func (t *Translator) unknown(instr arm.Instruction) ([]reil.Instruction, error) {
	tb := NewTBuilder(instr, t.names)
	tb.Add(tb.ir.Unkn())
	return tb.Instanciate(instr.Address)
}
