package behavior

import (
	"errors"
	"fmt"
)

// Kind classifies the outcome of one hook invocation.
type Kind int

const (
	// KindIgnore is success.
	KindIgnore Kind = iota
	// KindRecover is logged; the behavior keeps running.
	KindRecover
	// KindSelfDisable stops the behavior from being invoked again.
	KindSelfDisable
	// KindFatalPostStep lets the current pass finish, then stops the scheduler.
	KindFatalPostStep
	// KindFatal skips the rest of the pass and stops the scheduler.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindIgnore:
		return "Ignore"
	case KindRecover:
		return "Recover"
	case KindSelfDisable:
		return "SelfDisable"
	case KindFatalPostStep:
		return "FatalPostStep"
	case KindFatal:
		return "Fatal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// StepError is the outcome a hook returns.
type StepError struct {
	Kind Kind
	Msg  string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s(%s)", e.Kind, e.Msg)
}

// Is matches another StepError of the same kind, so errors.Is can be used
// with a kind-only target such as &StepError{Kind: KindFatal}.
func (e *StepError) Is(target error) bool {
	t, ok := target.(*StepError)
	return ok && t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

func newStepError(kind Kind, msg string) error {
	return &StepError{Kind: kind, Msg: msg}
}

func Recover(msg string) error       { return newStepError(KindRecover, msg) }
func SelfDisable(msg string) error   { return newStepError(KindSelfDisable, msg) }
func FatalPostStep(msg string) error { return newStepError(KindFatalPostStep, msg) }
func Fatal(msg string) error         { return newStepError(KindFatal, msg) }

func Recoverf(format string, args ...any) error {
	return newStepError(KindRecover, fmt.Sprintf(format, args...))
}

func SelfDisablef(format string, args ...any) error {
	return newStepError(KindSelfDisable, fmt.Sprintf(format, args...))
}

func FatalPostStepf(format string, args ...any) error {
	return newStepError(KindFatalPostStep, fmt.Sprintf(format, args...))
}

func Fatalf(format string, args ...any) error {
	return newStepError(KindFatal, fmt.Sprintf(format, args...))
}

// KindOf classifies err. Nil is Ignore; errors that do not wrap a StepError
// are Fatal.
func KindOf(err error) Kind {
	if err == nil {
		return KindIgnore
	}
	return asStepError(err).Kind
}

// asStepError normalizes any hook error into a StepError. A typed nil
// *StepError is Ignore.
func asStepError(err error) *StepError {
	var se *StepError
	if errors.As(err, &se) {
		if se == nil {
			return &StepError{Kind: KindIgnore}
		}
		return se
	}
	return &StepError{Kind: KindFatal, Msg: err.Error()}
}
