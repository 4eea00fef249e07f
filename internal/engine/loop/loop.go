// Package loop drives registered behaviors through the per-tick phases and
// hands the render queue to the backend.
package loop

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/spin/internal/engine/behavior"
	"github.com/Faultbox/spin/internal/engine/render"
	"github.com/Faultbox/spin/internal/engine/world"
	"github.com/Faultbox/spin/internal/logger"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultFixedStep         = time.Second / 48
	DefaultZeroDeltaFallback = 0.5
)

var (
	ErrNotStarted     = errors.New("loop: not started")
	ErrAlreadyStarted = errors.New("loop: already started")
)

// Phase names one scheduler pass.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseStep
	PhaseFixedStep
	PhaseLateStep
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseStep:
		return "step"
	case PhaseFixedStep:
		return "fixed_step"
	case PhaseLateStep:
		return "late_step"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// FailureReport is the only error Start and Step return for a failed phase.
type FailureReport struct {
	Phase Phase
	Frame uint64
	Cause error
}

func (r *FailureReport) Error() string {
	return fmt.Sprintf("%s failed at frame %d: %v", r.Phase, r.Frame, r.Cause)
}

func (r *FailureReport) Unwrap() error { return r.Cause }

// Clock supplies tick timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// Options configures a GameLoop.
type Options struct {
	// Backend receives the render queue after late_step. Nil skips rendering.
	Backend render.Backend
	// FixedStep is the minimum time between fixed_step passes.
	FixedStep time.Duration
	// ZeroDeltaFallback is the delta time used when a tick took under 1ms.
	ZeroDeltaFallback float32
	Clock             Clock
}

type registration struct {
	name     string
	b        behavior.Behavior
	disabled bool
}

// GameLoop owns the world and the registered behaviors. It is not safe for
// concurrent use; ticks must be serialized by the caller.
type GameLoop struct {
	world *world.World
	opts  Options
	regs  []*registration

	started   bool
	startErr  error
	lastTick  time.Time
	lastFixed time.Time
	lastStats render.Stats
}

// New returns a loop over w.
func New(w *world.World, opts Options) *GameLoop {
	if opts.FixedStep <= 0 {
		opts.FixedStep = DefaultFixedStep
	}
	if opts.ZeroDeltaFallback == 0 {
		opts.ZeroDeltaFallback = DefaultZeroDeltaFallback
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	return &GameLoop{world: w, opts: opts}
}

// Register hands ownership of b to the loop. Behaviors run in registration
// order within every phase.
func (g *GameLoop) Register(b behavior.Behavior) error {
	if g.started || g.startErr != nil {
		return ErrAlreadyStarted
	}
	g.regs = append(g.regs, &registration{name: fmt.Sprintf("%T", b), b: b})
	return nil
}

// World returns the scene state.
func (g *GameLoop) World() *world.World { return g.world }

// Frame returns the number of completed ticks.
func (g *GameLoop) Frame() uint64 { return g.world.FrameCount }

// LastRender returns the stats of the most recent queue submission.
func (g *GameLoop) LastRender() render.Stats { return g.lastStats }

// Active returns the number of behaviors that have not disabled themselves.
func (g *GameLoop) Active() int {
	n := 0
	for _, r := range g.regs {
		if !r.disabled {
			n++
		}
	}
	return n
}

// Start runs the start hook of every behavior once. Any failure, including
// a SelfDisable that is not superseded by a later Recover, leaves the loop
// permanently unable to tick.
func (g *GameLoop) Start() error {
	if g.startErr != nil {
		return g.startErr
	}
	if g.started {
		return ErrAlreadyStarted
	}

	now := g.opts.Clock.Now()
	g.lastTick = now
	g.lastFixed = now

	if err := g.runPhase(PhaseStart); err != nil {
		g.startErr = &FailureReport{Phase: PhaseStart, Frame: g.world.FrameCount, Cause: err}
		logger.Error("loop: start failed", zap.Error(g.startErr))
		return g.startErr
	}

	g.started = true
	logger.Info("loop started",
		zap.Int("behaviors", len(g.regs)),
		zap.Duration("fixed_step", g.opts.FixedStep))
	return nil
}

// Step runs one tick: step, fixed_step when due, late_step, then render.
//
// Fatal and FatalPostStep failures end the tick after the failing pass.
// A failure caused by SelfDisable lets the remaining phases and the render
// run before it is returned.
func (g *GameLoop) Step() error {
	if g.startErr != nil {
		return g.startErr
	}
	if !g.started {
		return ErrNotStarted
	}

	now := g.opts.Clock.Now()
	var deferred error

	for _, ph := range []Phase{PhaseStep, PhaseFixedStep, PhaseLateStep} {
		if ph == PhaseFixedStep {
			if now.Sub(g.lastFixed) <= g.opts.FixedStep {
				continue
			}
			g.lastFixed = now
		}

		err := g.runPhase(ph)
		if err == nil {
			continue
		}
		report := &FailureReport{Phase: ph, Frame: g.world.FrameCount, Cause: err}
		if behavior.KindOf(err) != behavior.KindSelfDisable {
			return report
		}
		if deferred == nil {
			deferred = report
		}
	}

	if g.opts.Backend != nil {
		g.lastStats = g.world.Queue().SubmitAll(g.opts.Backend)
	}

	g.world.FrameCount++
	g.world.DeltaTime = g.deltaTime(now.Sub(g.lastTick))
	g.lastTick = now

	return deferred
}

// deltaTime is the reciprocal of the elapsed whole milliseconds.
func (g *GameLoop) deltaTime(elapsed time.Duration) float32 {
	ms := elapsed.Milliseconds()
	if ms <= 0 {
		return g.opts.ZeroDeltaFallback
	}
	return 1 / float32(ms)
}

func (g *GameLoop) runPhase(ph Phase) error {
	pass := behavior.NewPass(ph.String())
	for _, r := range g.regs {
		if r.disabled {
			continue
		}
		err := invoke(ph, r.b, g.world)
		if behavior.KindOf(err) == behavior.KindSelfDisable {
			r.disabled = true
			logger.Info("behavior disabled",
				zap.String("behavior", r.name),
				zap.Stringer("phase", ph),
				zap.Error(err))
		}
		if abort := pass.Record(err); abort != nil {
			return abort
		}
	}
	return pass.Result()
}

func invoke(ph Phase, b behavior.Behavior, w *world.World) error {
	switch ph {
	case PhaseStart:
		return b.Start(w)
	case PhaseStep:
		return b.Step(w)
	case PhaseFixedStep:
		return b.FixedStep(w)
	case PhaseLateStep:
		return b.LateStep(w)
	default:
		return behavior.Fatalf("unknown phase %d", int(ph))
	}
}
