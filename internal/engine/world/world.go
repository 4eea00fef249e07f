// Package world holds the scene state a tick operates on: the entity store,
// the render queue, timing counters and the collaborator views behaviors read.
package world

import (
	"github.com/Faultbox/spin/internal/engine/render"
	"github.com/Faultbox/spin/internal/engine/transform"
)

// Input is a snapshot of pointer state valid for one tick.
type Input interface {
	// Pointer returns the pointer position in canvas pixels.
	Pointer() (x, y float32, ok bool)
	// PointerView returns the pointer position mapped to [-1, 1] on both axes.
	PointerView() (x, y float32, ok bool)
}

// Canvas is the read-only view of the drawing surface.
type Canvas interface {
	Size() (width, height int)
	AspectRatio() float32
}

// World is owned by the scheduler. Behaviors receive it for the duration of
// a single hook call and must not retain it.
type World struct {
	// DeltaTime is 1/elapsed milliseconds of the previous tick.
	DeltaTime float32
	// FrameCount is the number of completed ticks.
	FrameCount uint64

	store  *Store
	queue  *render.Queue
	input  Input
	canvas Canvas
	camera *transform.Transform
}

// New returns an empty world with its own queue and an identity camera.
func New() *World {
	q := render.NewQueue()
	return &World{
		store:  NewStore(q),
		queue:  q,
		camera: transform.Identity(),
	}
}

func (w *World) Store() *Store        { return w.store }
func (w *World) Queue() *render.Queue { return w.queue }
func (w *World) Input() Input         { return w.input }
func (w *World) Canvas() Canvas       { return w.canvas }
func (w *World) SetInput(in Input)    { w.input = in }
func (w *World) SetCanvas(c Canvas)   { w.canvas = c }

// Camera returns the camera transform shared with the renderer.
func (w *World) Camera() *transform.Transform { return w.camera }

// SetCamera replaces the camera handle. Nil resets it to identity.
func (w *World) SetCamera(tf *transform.Transform) {
	if tf == nil {
		tf = transform.Identity()
	}
	w.camera = tf
}

// Spawn inserts an entity into the store.
func (w *World) Spawn(init Init) EntityID {
	return w.store.Insert(init)
}

// Get looks up an entity.
func (w *World) Get(id EntityID) (*Entity, bool) {
	return w.store.Get(id)
}

// Despawn removes an entity.
func (w *World) Despawn(id EntityID) bool {
	return w.store.Remove(id)
}
