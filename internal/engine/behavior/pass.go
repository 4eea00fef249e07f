package behavior

import (
	"go.uber.org/zap"

	"github.com/Faultbox/spin/internal/logger"
)

// Pass folds the outcomes of one phase over all behaviors into a single
// result. The accumulator keeps the most recent non-ignore outcome; it is
// not a severity ranking, so a later Recover replaces an earlier
// SelfDisable in the pass result.
type Pass struct {
	phase string
	last  *StepError
}

// NewPass starts an accumulator for the named phase.
func NewPass(phase string) *Pass {
	return &Pass{phase: phase}
}

// Record folds one hook result. It returns a non-nil error only for a Fatal
// outcome, in which case the caller must stop the pass immediately.
func (p *Pass) Record(err error) error {
	if err == nil {
		return nil
	}
	se := asStepError(err)
	switch se.Kind {
	case KindIgnore:
		return nil
	case KindFatal:
		return se
	default:
		logger.Debug("behavior outcome",
			zap.String("phase", p.phase),
			zap.Stringer("kind", se.Kind),
			zap.String("msg", se.Msg))
		p.last = se
		return nil
	}
}

// Result translates the accumulated outcome once the pass has completed.
// Recover is logged and reported as success; any other non-ignore outcome
// is returned as the phase failure.
func (p *Pass) Result() error {
	if p.last == nil {
		return nil
	}
	if p.last.Kind == KindRecover {
		logger.Warn("behavior recovered",
			zap.String("phase", p.phase),
			zap.String("msg", p.last.Msg))
		return nil
	}
	return p.last
}

// Last returns the accumulated outcome without translating it.
func (p *Pass) Last() *StepError {
	return p.last
}
