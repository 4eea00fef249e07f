// Package game wires the engine together: window, renderer, input, assets
// and the load/run state machine that drives the scene.
package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/spin/internal/assets"
	"github.com/Faultbox/spin/internal/config"
	"github.com/Faultbox/spin/internal/engine/input"
	"github.com/Faultbox/spin/internal/engine/loop"
	"github.com/Faultbox/spin/internal/engine/mesh"
	"github.com/Faultbox/spin/internal/engine/renderer"
	"github.com/Faultbox/spin/internal/engine/shader"
	"github.com/Faultbox/spin/internal/engine/window"
	"github.com/Faultbox/spin/internal/engine/world"
	"github.com/Faultbox/spin/internal/game/states"
	"github.com/Faultbox/spin/internal/logger"
)

const title = "spin"

// Game is the main game instance.
type Game struct {
	config *config.Config
	runID  uuid.UUID
	log    *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	program  *shader.Program
	assets   *assets.Manager
	loader   *mesh.Loader
	world    *world.World
	states   *states.Manager
	driver   *loop.Driver
}

// New creates a new game instance.
func New(cfg *config.Config) (*Game, error) {
	g := &Game{
		config: cfg,
		runID:  uuid.New(),
	}
	g.log = logger.With(zap.String("run", g.runID.String()))
	g.log.Info("initializing game",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height))

	var err error

	// Window first: it owns the OpenGL context.
	g.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	g.world = world.New()
	g.world.SetCanvas(g.window)

	width, height := g.window.Size()
	g.renderer, err = renderer.New(renderer.Config{
		Width:        width,
		Height:       height,
		ViewportSize: cfg.Graphics.ViewportSize,
		WorldDepth:   cfg.Graphics.WorldDepth,
		ClearColor:   cfg.Graphics.ClearColor,
	}, g.world.Camera())
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	g.program, err = shader.LoadVertexColor()
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to load shader: %w", err)
	}

	g.input = input.New(width, height)
	g.world.SetInput(g.input)

	g.assets = assets.NewManager()
	for _, dir := range cfg.Scene.AssetDirs {
		if err := g.assets.AddDir(dir); err != nil {
			g.Close()
			return nil, fmt.Errorf("failed to add asset dir: %w", err)
		}
	}
	g.loader = mesh.NewLoader(g.assets)

	g.states = states.NewManager()
	g.states.Change(states.NewLoadingState(states.LoadingStateConfig{
		Meshes: cfg.Scene.Meshes,
		Next:   g.enterScene,
	}, g.loader, g.states))

	g.log.Info("game initialized successfully", zap.Strings("assets", g.assets.Sources()))
	return g, nil
}

// RunID identifies this process in logs.
func (g *Game) RunID() uuid.UUID { return g.runID }

// enterScene builds the scene from the preloaded meshes and returns the
// state that runs it.
func (g *Game) enterScene(batch *mesh.Batch) (states.State, error) {
	gl := loop.New(g.world, loop.Options{
		Backend:           g.renderer,
		FixedStep:         g.config.Loop.FixedStepInterval(),
		ZeroDeltaFallback: g.config.Loop.ZeroDeltaFallback,
	})

	scene := &Scene{
		Config:      g.config.Scene,
		Viewport:    g.config.Graphics.ViewportSize,
		Program:     g.program,
		Meshes:      batch,
		Loader:      g.loader,
		RenderStats: gl.LastRender,
	}
	bs, err := scene.Populate(g.world)
	if err != nil {
		return nil, err
	}

	// Register every behavior before the running state starts the loop
	for _, b := range bs {
		if err := gl.Register(b); err != nil {
			return nil, err
		}
	}
	return states.NewRunningState(gl), nil
}

// Step runs one tick: input, state update, present.
func (g *Game) Step() error {
	if g.input.Update() {
		g.log.Info("quit requested")
		g.Stop()
		return nil
	}
	if w, h, ok := g.input.Resized(); ok {
		g.renderer.Resize(w, h)
	}

	if err := g.states.Update(); err != nil {
		return err
	}

	g.window.SwapBuffers()
	return nil
}

// Run ticks the game at the configured frame rate until quit, ctx
// cancellation or a tick failure.
func (g *Game) Run(ctx context.Context) error {
	g.driver = loop.NewDriver(g, g.config.Loop.TickInterval())
	g.log.Info("starting game loop", zap.Duration("interval", g.config.Loop.TickInterval()))
	return g.driver.Run(ctx)
}

// Stop asks a running game to return from Run after the current tick.
func (g *Game) Stop() {
	if g.driver != nil {
		g.driver.Stop()
	}
}

// Close cleans up game resources.
func (g *Game) Close() {
	g.log.Info("closing game")

	if g.states != nil {
		if err := g.states.Close(); err != nil {
			g.log.Warn("state exit failed", zap.Error(err))
		}
	}
	if g.assets != nil {
		g.assets.Close()
	}
	if g.program != nil {
		g.program.Delete()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
