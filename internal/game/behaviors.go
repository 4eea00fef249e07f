package game

import (
	"go.uber.org/zap"

	"github.com/Faultbox/spin/internal/engine/behavior"
	"github.com/Faultbox/spin/internal/engine/mesh"
	"github.com/Faultbox/spin/internal/engine/render"
	"github.com/Faultbox/spin/internal/engine/renderer"
	"github.com/Faultbox/spin/internal/engine/shader"
	"github.com/Faultbox/spin/internal/engine/transform"
	"github.com/Faultbox/spin/internal/engine/world"
	"github.com/Faultbox/spin/internal/logger"
	"github.com/Faultbox/spin/pkg/math"
)

// BlockGrid spawns Count×Count copies of a mesh around a shared pivot.
type BlockGrid struct {
	behavior.Base

	Mesh    *mesh.Mesh
	Program *shader.Program
	Count   int
	Size    float32
	Scale   float32

	pivot      *transform.Transform
	pivotID    world.EntityID
	transforms []*transform.Transform
}

// NewBlockGrid returns a grid whose pivot transform exists before Start so
// other behaviors can be bound to it.
func NewBlockGrid(m *mesh.Mesh, prog *shader.Program, count int, size, scale float32) *BlockGrid {
	return &BlockGrid{
		Mesh:    m,
		Program: prog,
		Count:   count,
		Size:    size,
		Scale:   scale,
		pivot:   transform.Identity(),
	}
}

// Pivot returns the transform every block is parented to.
func (g *BlockGrid) Pivot() *transform.Transform { return g.pivot }

// PivotID returns the pivot entity, zero before Start.
func (g *BlockGrid) PivotID() world.EntityID { return g.pivotID }

// Transforms returns the block transforms in spawn order.
func (g *BlockGrid) Transforms() []*transform.Transform { return g.transforms }

func (g *BlockGrid) Start(w *world.World) error {
	if g.Mesh == nil {
		return behavior.Fatal("block grid: no mesh")
	}

	g.pivotID = w.Spawn(world.Init{Name: "grid", Transform: g.pivot})

	n := g.Count
	half := float32(n / 2)
	scale := math.Vec3{X: g.Scale, Y: g.Scale, Z: g.Scale}
	g.transforms = make([]*transform.Transform, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pos := math.Vec3{
				X: (half - float32(i)) * g.Size,
				Z: (half - float32(j)) * g.Size,
			}
			tf := transform.New(pos, math.Euler{}, scale)
			color := renderer.Color{float32(i+1) / float32(n), 0.6, float32(j+1) / float32(n), 1}
			item := render.NewItem(g.Mesh.Name, renderer.NewModel(g.Mesh, color, g.Program), tf)
			w.Spawn(world.Init{
				Name:      "block",
				Transform: tf,
				Render:    item,
				Parent:    g.pivotID,
			})
			g.transforms = append(g.transforms, tf)
		}
	}

	logger.Debug("block grid spawned", zap.Int("blocks", len(g.transforms)))
	return nil
}

// Spinner rotates a set of transforms by Degrees per unit of delta time.
type Spinner struct {
	behavior.Base

	Targets func() []*transform.Transform
	Degrees math.Vec3
}

func (s *Spinner) Step(w *world.World) error {
	if s.Targets == nil {
		return behavior.SelfDisable("spinner: no targets")
	}
	dt := w.DeltaTime
	delta := math.EulerFromDegrees(s.Degrees.X*dt, s.Degrees.Y*dt, s.Degrees.Z*dt)
	for _, tf := range s.Targets() {
		tf.Rotate(delta)
	}
	return nil
}

// RotateWithMouse orients Target from the pointer position.
type RotateWithMouse struct {
	behavior.Base

	Target *transform.Transform
}

func (r *RotateWithMouse) Step(w *world.World) error {
	in := w.Input()
	if in == nil {
		return behavior.Recover("rotate with mouse: no input source")
	}
	vx, vy, ok := in.PointerView()
	if !ok {
		return nil
	}
	tilt := vy*180 - 90
	turn := -vx * 360
	r.Target.SetEulerRotation(math.EulerFromDegrees(tilt, turn, 0))
	return nil
}

// MouseFollower eases Target toward the pointer on every fixed step.
type MouseFollower struct {
	behavior.Base

	Target   *transform.Transform
	Viewport float32
	// Rate is the lerp factor per fixed step, 0.5 when unset.
	Rate float32
}

func (f *MouseFollower) FixedStep(w *world.World) error {
	in, canvas := w.Input(), w.Canvas()
	pos := f.Target.Position()
	if in == nil || canvas == nil {
		f.Target.SetPosition(math.Vec3{Z: pos.Z})
		return nil
	}
	vx, vy, ok := in.PointerView()
	if !ok {
		return nil
	}

	width, height := canvas.Size()
	viewW, viewH := renderer.ViewSize(f.Viewport, width, height)
	goal := math.Vec3{X: vx * viewW / 2, Y: vy * viewH / 2, Z: pos.Z}

	rate := f.Rate
	if rate == 0 {
		rate = 0.5
	}
	f.Target.SetPosition(pos.Lerp(goal, rate))
	return nil
}

// PointerGuide draws a line from the world origin to the point under the
// pointer. Its geometry is rebuilt every step, so its item always redraws.
type PointerGuide struct {
	behavior.Base

	Program  *shader.Program
	Viewport float32

	lines *renderer.LineBuilder
	model *renderer.Model
	item  *render.Item
}

// Item returns the guide's render item, nil before Start.
func (g *PointerGuide) Item() *render.Item { return g.item }

// Model returns the guide's line model, nil before Start.
func (g *PointerGuide) Model() *renderer.Model { return g.model }

func (g *PointerGuide) Start(w *world.World) error {
	g.lines = renderer.NewLines(g.Program).DefaultColor(renderer.Color{1, 1, 0, 1})
	g.model = g.lines.AddLine(math.Vec3{}, math.Vec3{}).Build("pointer guide")
	g.item = render.NewItem(g.model.Name, g.model, nil).SetAlwaysRedraw(true)
	w.Spawn(world.Init{Name: "pointer guide", Render: g.item, Order: render.Reverse})
	return nil
}

func (g *PointerGuide) Step(w *world.World) error {
	in, canvas := w.Input(), w.Canvas()
	if in == nil || canvas == nil {
		return nil
	}
	vx, vy, ok := in.PointerView()
	if !ok {
		return nil
	}

	width, height := canvas.Size()
	viewW, viewH := renderer.ViewSize(g.Viewport, width, height)
	target := w.Camera().Position().Add(math.Vec3{X: vx * viewW / 2, Y: vy * viewH / 2})
	target.Z = 0

	g.lines.Reset().AddLine(math.Vec3{}, target)
	g.lines.Rebuild(g.model)
	return nil
}

// MeshSpawner requests a mesh on start, polls it every step and spawns it
// once it arrives. A failed load is reported once and then ignored.
type MeshSpawner struct {
	behavior.Base

	Loader    *mesh.Loader
	Path      string
	Program   *shader.Program
	Color     renderer.Color
	Transform *transform.Transform
	// Outline adds a bounding box child around the spawned mesh.
	Outline bool

	pending *mesh.Pending
	spawned world.EntityID
	failed  bool
}

// Spawned returns the spawned entity, zero until the mesh has loaded.
func (s *MeshSpawner) Spawned() world.EntityID { return s.spawned }

func (s *MeshSpawner) Start(w *world.World) error {
	if s.Loader == nil {
		return behavior.SelfDisable("mesh spawner: no loader")
	}
	s.pending = s.Loader.Load(s.Path)
	return nil
}

func (s *MeshSpawner) Step(w *world.World) error {
	if s.failed || !s.spawned.IsZero() {
		return nil
	}
	m, done, err := s.pending.TryTake()
	if !done {
		return nil
	}
	if err != nil {
		s.failed = true
		return behavior.Recoverf("mesh spawner: %v", err)
	}

	tf := s.Transform
	if tf == nil {
		tf = transform.Identity()
	}
	item := render.NewItem(m.Name, renderer.NewModel(m, s.Color, s.Program), tf)
	s.spawned = w.Spawn(world.Init{Name: s.Path, Transform: tf, Render: item})
	if s.Outline {
		lo, hi := m.Bounds()
		box := renderer.NewLines(s.Program).Box(lo, hi).Build("bounds")
		w.Spawn(world.Init{
			Name:   "bounds",
			Render: render.NewItem(box.Name, box, nil),
			Order:  render.Reverse,
			Parent: s.spawned,
		})
	}
	logger.Info("mesh spawned",
		zap.String("path", s.Path),
		zap.Int("vertices", m.VertexCount()),
		zap.Stringer("entity", s.spawned))
	return nil
}

// FrameStats logs a summary line every Every frames.
type FrameStats struct {
	behavior.Base

	Every uint64
	// Render reports the previous frame's submission, when set.
	Render func() render.Stats
}

func (f *FrameStats) LateStep(w *world.World) error {
	if f.Every == 0 || w.FrameCount%f.Every != 0 {
		return nil
	}
	fields := []zap.Field{
		zap.Uint64("frame", w.FrameCount),
		zap.Float32("delta", w.DeltaTime),
		zap.Int("entities", w.Store().Len()),
		zap.Int("forward", w.Queue().Len(render.Forward)),
		zap.Int("reverse", w.Queue().Len(render.Reverse)),
	}
	if f.Render != nil {
		st := f.Render()
		fields = append(fields,
			zap.Int("drawn", st.Drawn),
			zap.Int("failed", st.Failed),
			zap.Int("skipped", st.Skipped))
	}
	logger.Debug("frame stats", fields...)
	return nil
}
