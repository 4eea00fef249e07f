package game

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/spin/internal/engine/behavior"
	"github.com/Faultbox/spin/internal/engine/mesh"
	"github.com/Faultbox/spin/internal/engine/render"
	"github.com/Faultbox/spin/internal/engine/shader"
	"github.com/Faultbox/spin/internal/engine/transform"
	"github.com/Faultbox/spin/internal/engine/world"
	"github.com/Faultbox/spin/internal/logger"
	"github.com/Faultbox/spin/pkg/math"
)

const eps = 1e-4

type fakeInput struct {
	x, y float32
	ok   bool
}

func (f *fakeInput) Pointer() (float32, float32, bool)     { return f.x, f.y, f.ok }
func (f *fakeInput) PointerView() (float32, float32, bool) { return f.x, f.y, f.ok }

type fakeCanvas struct{ w, h int }

func (c fakeCanvas) Size() (int, int) { return c.w, c.h }
func (c fakeCanvas) AspectRatio() float32 {
	return float32(c.w) / float32(c.h)
}

type mapSource map[string]string

func (m mapSource) Load(name string) ([]byte, error) {
	s, ok := m[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(s), nil
}

const triangleOBJ = "o tri\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

func testProgram() *shader.Program {
	return shader.NewDetached("test",
		map[string]int32{shader.UniformTransform: 0},
		map[string]int32{shader.AttributePosition: 0, shader.AttributeColor: 1})
}

func quietLogs(t *testing.T) {
	t.Helper()
	t.Cleanup(logger.SetLogger(zap.NewNop()))
}

func TestBlockGridSpawnsParentedBlocks(t *testing.T) {
	quietLogs(t)
	w := world.New()
	grid := NewBlockGrid(mesh.Cube(1), testProgram(), 3, 2, 0.5)

	require.NoError(t, grid.Start(w))

	assert.Equal(t, 10, w.Store().Len())
	assert.Len(t, grid.Transforms(), 9)
	assert.Len(t, w.Store().Children(grid.PivotID()), 9)
	assert.Equal(t, 9, w.Queue().Len(render.Forward))

	first := grid.Transforms()[0]
	assert.Equal(t, math.Vec3{X: 2, Z: 2}, first.Position())
	assert.Equal(t, math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, first.Scale())

	last := grid.Transforms()[8]
	assert.Equal(t, math.Vec3{X: -2, Z: -2}, last.Position())
}

func TestBlockGridPivotMovesBlocks(t *testing.T) {
	quietLogs(t)
	w := world.New()
	grid := NewBlockGrid(mesh.Cube(1), testProgram(), 1, 1, 1)
	require.NoError(t, grid.Start(w))

	grid.Pivot().SetPosition(math.Vec3{Y: 3})

	var block world.EntityID
	for _, id := range w.Store().Children(grid.PivotID()) {
		block = id
	}
	got := w.Store().WorldMatrix(block).TransformPoint(math.Vec3{})
	assert.InDelta(t, 3, got.Y, eps)
}

func TestBlockGridWithoutMeshIsFatal(t *testing.T) {
	grid := NewBlockGrid(nil, testProgram(), 2, 1, 1)
	err := grid.Start(world.New())
	assert.Equal(t, behavior.KindFatal, behavior.KindOf(err))
}

func TestSpinnerScalesByDeltaTime(t *testing.T) {
	tf := transform.Identity()
	s := &Spinner{
		Targets: func() []*transform.Transform { return []*transform.Transform{tf} },
		Degrees: math.Vec3{Y: 90},
	}
	w := world.New()
	w.DeltaTime = 0.5

	require.NoError(t, s.Step(w))
	require.NoError(t, s.Step(w))

	assert.InDelta(t, math.Deg2Rad(90), tf.EulerRotation().Pitch, eps)
	assert.InDelta(t, 0, tf.EulerRotation().Roll, eps)
}

func TestSpinnerWithoutTargetsDisables(t *testing.T) {
	err := (&Spinner{}).Step(world.New())
	assert.Equal(t, behavior.KindSelfDisable, behavior.KindOf(err))
}

func TestRotateWithMouse(t *testing.T) {
	tf := transform.Identity()
	r := &RotateWithMouse{Target: tf}
	w := world.New()

	t.Run("no input", func(t *testing.T) {
		err := r.Step(w)
		assert.Equal(t, behavior.KindRecover, behavior.KindOf(err))
	})

	in := &fakeInput{}
	w.SetInput(in)

	t.Run("no pointer yet", func(t *testing.T) {
		require.NoError(t, r.Step(w))
		assert.Equal(t, math.Euler{}, tf.EulerRotation())
	})

	t.Run("pointer", func(t *testing.T) {
		in.x, in.y, in.ok = 0.25, 0.5, true
		require.NoError(t, r.Step(w))
		rot := tf.EulerRotation()
		assert.InDelta(t, 0, rot.Roll, eps)
		assert.InDelta(t, math.Deg2Rad(-90), rot.Pitch, eps)
		assert.InDelta(t, 0, rot.Yaw, eps)
	})
}

func TestMouseFollower(t *testing.T) {
	cam := transform.Identity().SetPosition(math.Vec3{Z: 5})
	f := &MouseFollower{Target: cam, Viewport: 30}
	w := world.New()
	w.SetCanvas(fakeCanvas{w: 200, h: 100})
	w.SetInput(&fakeInput{x: 1, y: -1, ok: true})

	require.NoError(t, f.FixedStep(w))

	pos := cam.Position()
	assert.InDelta(t, 7.5, pos.X, eps)
	assert.InDelta(t, -3.75, pos.Y, eps)
	assert.InDelta(t, 5, pos.Z, eps)

	require.NoError(t, f.FixedStep(w))
	assert.InDelta(t, 11.25, cam.Position().X, eps)
}

func TestMouseFollowerResetsWithoutInput(t *testing.T) {
	cam := transform.Identity().SetPosition(math.Vec3{X: 4, Y: 2, Z: 5})
	f := &MouseFollower{Target: cam, Viewport: 30}

	require.NoError(t, f.FixedStep(world.New()))
	assert.Equal(t, math.Vec3{Z: 5}, cam.Position())
}

func TestPointerGuideRebuildsEveryStep(t *testing.T) {
	g := &PointerGuide{Program: testProgram(), Viewport: 30}
	w := world.New()
	require.NoError(t, g.Start(w))

	require.NotNil(t, g.Item())
	assert.True(t, g.Item().AlwaysRedraw())
	assert.Equal(t, 1, w.Queue().Len(render.Reverse))

	w.SetCanvas(fakeCanvas{w: 200, h: 100})
	w.Camera().SetPosition(math.Vec3{X: 1, Z: 9})
	w.SetInput(&fakeInput{x: 1, y: 1, ok: true})
	require.NoError(t, g.Step(w))

	pos := g.Model().Positions()
	require.Len(t, pos, 6)
	assert.InDelta(t, 16, pos[3], eps)
	assert.InDelta(t, 7.5, pos[4], eps)
	assert.InDelta(t, 0, pos[5], eps)

	// Redrawn items stay pending so the rebuilt geometry is set up again.
	backend := &setupCounter{}
	w.Queue().SubmitAll(backend)
	w.Queue().SubmitAll(backend)
	assert.Equal(t, 2, backend.setups)
	status, ok := w.Queue().Status(g.Item())
	require.True(t, ok)
	assert.Equal(t, render.NeedsDraw, status)
}

type setupCounter struct{ setups int }

func (b *setupCounter) FirstTimeSetup(render.Drawable) error    { b.setups++; return nil }
func (b *setupCounter) Submit(render.Drawable, math.Mat4) error { return nil }

func TestMeshSpawnerSpawnsOnce(t *testing.T) {
	quietLogs(t)
	loader := mesh.NewLoader(mapSource{"tri.obj": triangleOBJ})
	s := &MeshSpawner{Loader: loader, Path: "tri.obj", Program: testProgram()}
	w := world.New()

	require.NoError(t, s.Start(w))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := s.pending.Wait(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Step(w))
	require.False(t, s.Spawned().IsZero())
	require.NoError(t, s.Step(w))

	assert.Equal(t, 1, w.Store().Len())
	e, ok := w.Get(s.Spawned())
	require.True(t, ok)
	assert.Equal(t, "tri.obj", e.Name)
	assert.Equal(t, 1, w.Queue().Len(render.Forward))
}

func TestMeshSpawnerOutline(t *testing.T) {
	quietLogs(t)
	loader := mesh.NewLoader(mapSource{"tri.obj": triangleOBJ})
	s := &MeshSpawner{
		Loader:    loader,
		Path:      "tri.obj",
		Program:   testProgram(),
		Transform: transform.Identity().SetPosition(math.Vec3{X: 10}),
		Outline:   true,
	}
	w := world.New()

	require.NoError(t, s.Start(w))
	_, err := s.pending.Wait(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Step(w))

	box, ok := w.Store().ChildByName(s.Spawned(), "bounds")
	require.True(t, ok)
	assert.Equal(t, 1, w.Queue().Len(render.Reverse))

	// The outline follows its parent.
	corner := w.Store().WorldMatrix(box).TransformPoint(math.Vec3{})
	assert.InDelta(t, 10, corner.X, eps)
}

func TestMeshSpawnerReportsFailureOnce(t *testing.T) {
	quietLogs(t)
	loader := mesh.NewLoader(mapSource{})
	s := &MeshSpawner{Loader: loader, Path: "missing.obj", Program: testProgram()}
	w := world.New()

	require.NoError(t, s.Start(w))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := s.pending.Wait(ctx)
	require.True(t, errors.Is(err, fs.ErrNotExist))

	err = s.Step(w)
	assert.Equal(t, behavior.KindRecover, behavior.KindOf(err))
	assert.NoError(t, s.Step(w))
	assert.True(t, s.Spawned().IsZero())
	assert.Equal(t, 0, w.Store().Len())
}

func TestMeshSpawnerWithoutLoaderDisables(t *testing.T) {
	err := (&MeshSpawner{Path: "x.obj"}).Start(world.New())
	assert.Equal(t, behavior.KindSelfDisable, behavior.KindOf(err))
}

func TestFrameStatsLogsEveryN(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(logger.SetLogger(zap.New(core)))

	f := &FrameStats{Every: 2}
	w := world.New()
	for frame := uint64(0); frame < 5; frame++ {
		w.FrameCount = frame
		require.NoError(t, f.LateStep(w))
	}

	entries := logs.FilterMessage("frame stats").All()
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(4), entries[2].ContextMap()["frame"])
}

func TestFrameStatsIncludesRenderStats(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(logger.SetLogger(zap.New(core)))

	f := &FrameStats{
		Every:  1,
		Render: func() render.Stats { return render.Stats{Drawn: 3, Failed: 1} },
	}
	require.NoError(t, f.LateStep(world.New()))

	entries := logs.FilterMessage("frame stats").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(3), fields["drawn"])
	assert.Equal(t, int64(1), fields["failed"])
	assert.Equal(t, int64(0), fields["skipped"])
}
