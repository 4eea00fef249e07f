package game

import (
	"go.uber.org/zap"

	"github.com/Faultbox/spin/internal/config"
	"github.com/Faultbox/spin/internal/engine/behavior"
	"github.com/Faultbox/spin/internal/engine/mesh"
	"github.com/Faultbox/spin/internal/engine/render"
	"github.com/Faultbox/spin/internal/engine/renderer"
	"github.com/Faultbox/spin/internal/engine/shader"
	"github.com/Faultbox/spin/internal/engine/world"
	"github.com/Faultbox/spin/internal/logger"
	"github.com/Faultbox/spin/pkg/math"
)

// MeshSet looks up preloaded meshes by path. *mesh.Batch implements it.
type MeshSet interface {
	Get(path string) (*mesh.Mesh, bool)
}

// Scene builds the demo content for a world.
type Scene struct {
	Config   config.SceneConfig
	Viewport float32
	Program  *shader.Program
	Meshes   MeshSet
	Loader   *mesh.Loader
	// RenderStats feeds the frame stats logger.
	RenderStats func() render.Stats
}

// Populate spawns static content into w and returns the behaviors that
// drive the rest, in registration order.
func (s *Scene) Populate(w *world.World) ([]behavior.Behavior, error) {
	cfg := s.Config

	cube, ok := s.lookup(cfg.CubeMesh)
	if !ok {
		logger.Warn("block mesh not preloaded, using procedural cube", zap.String("mesh", cfg.CubeMesh))
		cube = mesh.Cube(1)
	}

	grid := NewBlockGrid(cube, s.Program, cfg.BlockGrid, cfg.BlockSize, cfg.BlockScale)
	bs := []behavior.Behavior{
		grid,
		&RotateWithMouse{Target: grid.Pivot()},
		&Spinner{
			Targets: grid.Transforms,
			Degrees: math.Vec3{Y: cfg.SpinDegrees, Z: cfg.SpinDegrees / 2},
		},
	}

	if cfg.MouseFollower {
		bs = append(bs, &MouseFollower{Target: w.Camera(), Viewport: s.Viewport})
	}
	if cfg.SpawnMesh != "" && s.Loader != nil {
		bs = append(bs, &MeshSpawner{
			Loader:  s.Loader,
			Path:    cfg.SpawnMesh,
			Program: s.Program,
			Color:   renderer.Color{0.9, 0.75, 0.5, 1},
			Outline: cfg.DebugAxes,
		})
	}
	if cfg.StatsEvery > 0 {
		bs = append(bs, &FrameStats{Every: cfg.StatsEvery, Render: s.RenderStats})
	}

	if cfg.DebugAxes {
		bs = append(bs, &PointerGuide{Program: s.Program, Viewport: s.Viewport})

		axes := renderer.Axes(s.Program, s.Viewport/2).Build("axes")
		w.Spawn(world.Init{
			Name:   "axes",
			Render: render.NewItem(axes.Name, axes, nil),
			Order:  render.Reverse,
		})

		n := max(cfg.BlockGrid, 1)
		floor := renderer.Grid(s.Program, n, cfg.BlockSize, -cfg.BlockSize/2).Build("floor")
		w.Spawn(world.Init{
			Name:   "floor",
			Render: render.NewItem(floor.Name, floor, nil),
			Order:  render.Reverse,
		})
	}

	return bs, nil
}

func (s *Scene) lookup(path string) (*mesh.Mesh, bool) {
	if s.Meshes == nil || path == "" {
		return nil, false
	}
	return s.Meshes.Get(path)
}
