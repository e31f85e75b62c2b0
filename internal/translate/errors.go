package translate

import "fmt"

// NotImplementedError marks an operand shape, shift type, or mnemonic
// the translator does not cover. The Translator recovers locally by
// emitting a single Unkn and logging at info level (spec §7).
type NotImplementedError struct {
	What string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("not implemented: %s", e.What)
}

// NewNotImplemented builds a NotImplementedError with a formatted reason.
func NewNotImplemented(format string, args ...any) error {
	return &NotImplementedError{What: fmt.Sprintf(format, args...)}
}

// InvalidOperandError marks a write target that is neither a register
// nor memory, or a malformed register range (start > end). Treated the
// same as NotImplementedError by the Translator (spec §7).
type InvalidOperandError struct {
	What string
}

func (e *InvalidOperandError) Error() string {
	return fmt.Sprintf("invalid operand: %s", e.What)
}

// NewInvalidOperand builds an InvalidOperandError with a formatted reason.
func NewInvalidOperand(format string, args ...any) error {
	return &InvalidOperandError{What: fmt.Sprintf(format, args...)}
}

// AssertionViolationError marks a width or sequence-invariant violation.
// It is fatal and always surfaces to the caller (spec §7).
type AssertionViolationError struct {
	What string
}

func (e *AssertionViolationError) Error() string {
	return fmt.Sprintf("assertion violation: %s", e.What)
}

// NewAssertionViolation builds an AssertionViolationError.
func NewAssertionViolation(format string, args ...any) error {
	return &AssertionViolationError{What: fmt.Sprintf(format, args...)}
}

// recoverable reports whether err should be swallowed into a single Unkn
// instruction rather than propagated (spec §7: NotImplemented and
// InvalidOperand are recovered locally; everything else is not).
func recoverable(err error) bool {
	switch err.(type) {
	case *NotImplementedError, *InvalidOperandError:
		return true
	default:
		return false
	}
}
