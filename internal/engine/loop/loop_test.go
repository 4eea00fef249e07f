package loop

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/spin/internal/engine/behavior"
	"github.com/Faultbox/spin/internal/engine/render"
	"github.com/Faultbox/spin/internal/engine/world"
	"github.com/Faultbox/spin/internal/logger"
	"github.com/Faultbox/spin/pkg/math"
)

type fakeClock struct{ now time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// probe records every hook invocation into a shared log.
type probe struct {
	name string
	log  *[]string

	start, step, fixed, late behavior.Hook
}

func (p *probe) record(phase string, h behavior.Hook, w *world.World) error {
	*p.log = append(*p.log, p.name+"."+phase)
	if h == nil {
		return nil
	}
	return h(w)
}

func (p *probe) Start(w *world.World) error     { return p.record("start", p.start, w) }
func (p *probe) Step(w *world.World) error      { return p.record("step", p.step, w) }
func (p *probe) FixedStep(w *world.World) error { return p.record("fixed", p.fixed, w) }
func (p *probe) LateStep(w *world.World) error  { return p.record("late", p.late, w) }

func returns(err error) behavior.Hook {
	return func(*world.World) error { return err }
}

type countingBackend struct {
	submits int
}

func (b *countingBackend) FirstTimeSetup(render.Drawable) error { return nil }
func (b *countingBackend) Submit(render.Drawable, math.Mat4) error {
	b.submits++
	return nil
}

type harness struct {
	loop    *GameLoop
	clock   *fakeClock
	backend *countingBackend
	log     []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	restore := logger.SetLogger(zap.NewNop())
	t.Cleanup(restore)

	h := &harness{clock: newFakeClock(), backend: &countingBackend{}}
	w := world.New()
	w.Spawn(world.Init{Name: "cube", Render: render.NewItem("cube", "cube", nil)})
	h.loop = New(w, Options{
		Backend:   h.backend,
		FixedStep: 20 * time.Millisecond,
		Clock:     h.clock,
	})
	return h
}

func (h *harness) add(t *testing.T, p *probe) *probe {
	t.Helper()
	p.log = &h.log
	require.NoError(t, h.loop.Register(p))
	return p
}

func (h *harness) reset() { h.log = h.log[:0] }

func TestStepBeforeStart(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.loop.Step(), ErrNotStarted)
}

func TestPhaseOrder(t *testing.T) {
	h := newHarness(t)
	h.add(t, &probe{name: "a"})
	h.add(t, &probe{name: "b"})

	require.NoError(t, h.loop.Start())
	assert.Equal(t, []string{"a.start", "b.start"}, h.log)

	h.reset()
	h.clock.Advance(25 * time.Millisecond)
	require.NoError(t, h.loop.Step())
	assert.Equal(t, []string{
		"a.step", "b.step",
		"a.fixed", "b.fixed",
		"a.late", "b.late",
	}, h.log)
	assert.Equal(t, 1, h.backend.submits)
	assert.Equal(t, uint64(1), h.loop.Frame())
}

func TestFatalSkipsRemainingBehaviors(t *testing.T) {
	h := newHarness(t)
	h.add(t, &probe{name: "first"})
	h.add(t, &probe{name: "second", step: returns(behavior.Fatal("x"))})
	h.add(t, &probe{name: "third"})
	require.NoError(t, h.loop.Start())
	h.reset()

	err := h.loop.Step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x")
	assert.NotContains(t, h.log, "third.step")
	assert.Equal(t, []string{"first.step", "second.step"}, h.log)

	var report *FailureReport
	require.ErrorAs(t, err, &report)
	assert.Equal(t, PhaseStep, report.Phase)
	assert.Equal(t, behavior.KindFatal, behavior.KindOf(err))

	// The tick was aborted before rendering.
	assert.Zero(t, h.backend.submits)
	assert.Zero(t, h.loop.Frame())
}

func TestFatalPostStepFinishesPass(t *testing.T) {
	h := newHarness(t)
	h.add(t, &probe{name: "first"})
	h.add(t, &probe{name: "second", step: returns(behavior.FatalPostStep("y"))})
	h.add(t, &probe{name: "third"})
	require.NoError(t, h.loop.Start())
	h.reset()

	err := h.loop.Step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "y")
	assert.Equal(t, []string{"first.step", "second.step", "third.step"}, h.log)
	assert.Equal(t, behavior.KindFatalPostStep, behavior.KindOf(err))
}

func TestRecoverOnlyLogs(t *testing.T) {
	h := newHarness(t)
	core, logs := observer.New(zapcore.WarnLevel)
	restore := logger.SetLogger(zap.New(core))
	defer restore()

	h.add(t, &probe{name: "flaky", step: returns(behavior.Recover("z"))})
	require.NoError(t, h.loop.Start())

	for i := 0; i < 5; i++ {
		h.clock.Advance(16 * time.Millisecond)
		require.NoError(t, h.loop.Step())
	}

	warnings := logs.FilterMessage("behavior recovered").All()
	require.Len(t, warnings, 5)
	for _, w := range warnings {
		assert.Equal(t, "z", w.ContextMap()["msg"])
	}
	assert.Equal(t, uint64(5), h.loop.Frame())
}

func TestFixedStepAtMostOncePerTick(t *testing.T) {
	h := newHarness(t)
	fixed := 0
	h.add(t, &probe{name: "phys", fixed: func(*world.World) error {
		fixed++
		return nil
	}})
	require.NoError(t, h.loop.Start())

	// Ten intervals elapsed: still a single run.
	h.clock.Advance(200 * time.Millisecond)
	require.NoError(t, h.loop.Step())
	assert.Equal(t, 1, fixed)

	// Not yet due.
	h.clock.Advance(10 * time.Millisecond)
	require.NoError(t, h.loop.Step())
	assert.Equal(t, 1, fixed)

	// Exactly one interval is not enough; the gate is strictly greater.
	h.clock.Advance(10 * time.Millisecond)
	require.NoError(t, h.loop.Step())
	assert.Equal(t, 1, fixed)

	h.clock.Advance(time.Millisecond)
	require.NoError(t, h.loop.Step())
	assert.Equal(t, 2, fixed)
}

func TestSelfDisable(t *testing.T) {
	h := newHarness(t)
	h.add(t, &probe{name: "once", step: returns(behavior.SelfDisable("done"))})
	h.add(t, &probe{name: "other"})
	require.NoError(t, h.loop.Start())
	h.reset()

	h.clock.Advance(5 * time.Millisecond)
	err := h.loop.Step()
	require.Error(t, err)
	assert.Equal(t, behavior.KindSelfDisable, behavior.KindOf(err))

	// The rest of the tick still ran and rendered.
	assert.Equal(t, []string{"once.step", "other.step", "other.late"}, h.log)
	assert.Equal(t, 1, h.backend.submits)
	assert.Equal(t, uint64(1), h.loop.Frame())
	assert.Equal(t, 1, h.loop.Active())

	h.reset()
	h.clock.Advance(5 * time.Millisecond)
	require.NoError(t, h.loop.Step())
	assert.Equal(t, []string{"other.step", "other.late"}, h.log)
}

func TestSelfDisableSupersededByRecover(t *testing.T) {
	h := newHarness(t)
	h.add(t, &probe{name: "quitter", step: returns(behavior.SelfDisable("bye"))})
	h.add(t, &probe{name: "flaky", step: returns(behavior.Recover("meh"))})
	require.NoError(t, h.loop.Start())

	// Last non-ignore wins: the pass reports Recover, yet the quitter is
	// still taken out of rotation.
	require.NoError(t, h.loop.Step())
	assert.Equal(t, 1, h.loop.Active())
}

func TestStartFailurePreventsTicking(t *testing.T) {
	h := newHarness(t)
	h.add(t, &probe{name: "broken", start: returns(errors.New("no gpu"))})
	h.add(t, &probe{name: "after"})

	err := h.loop.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no gpu")
	assert.NotContains(t, h.log, "after.start")

	assert.Equal(t, err, h.loop.Step())
	assert.Equal(t, err, h.loop.Start())
	assert.ErrorIs(t, h.loop.Register(&probe{}), ErrAlreadyStarted)
}

func TestStartTwice(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.loop.Start())
	assert.ErrorIs(t, h.loop.Start(), ErrAlreadyStarted)
}

func TestDeltaTime(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.loop.Start())

	// Zero elapsed falls back.
	require.NoError(t, h.loop.Step())
	assert.Equal(t, float32(0.5), h.loop.World().DeltaTime)

	h.clock.Advance(20 * time.Millisecond)
	require.NoError(t, h.loop.Step())
	assert.InDelta(t, 0.05, h.loop.World().DeltaTime, 1e-6)

	// Sub-millisecond ticks count as zero.
	h.clock.Advance(500 * time.Microsecond)
	require.NoError(t, h.loop.Step())
	assert.Equal(t, float32(0.5), h.loop.World().DeltaTime)
}

func TestDefaults(t *testing.T) {
	g := New(world.New(), Options{})
	assert.Equal(t, DefaultFixedStep, g.opts.FixedStep)
	assert.Equal(t, float32(DefaultZeroDeltaFallback), g.opts.ZeroDeltaFallback)
	assert.Equal(t, SystemClock, g.opts.Clock)
	assert.Equal(t, "fixed_step", PhaseFixedStep.String())
}

func TestLastRenderReportsSubmission(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, render.Stats{}, h.loop.LastRender())

	require.NoError(t, h.loop.Start())
	h.clock.Advance(16 * time.Millisecond)
	require.NoError(t, h.loop.Step())

	st := h.loop.LastRender()
	assert.Equal(t, 1, st.Drawn)
	assert.Equal(t, 0, st.Failed)
	assert.Equal(t, 1, h.backend.submits)
}
