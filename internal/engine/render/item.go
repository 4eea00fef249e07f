package render

import (
	"github.com/Faultbox/spin/internal/engine/transform"
	"github.com/Faultbox/spin/pkg/math"
)

// Item binds a Drawable to the transform it is drawn with.
type Item struct {
	Name string

	drawable     Drawable
	tf           *transform.Transform
	matrix       func() math.Mat4
	enabled      bool
	alwaysRedraw bool
}

// NewItem returns an enabled item. A nil transform draws at identity.
func NewItem(name string, d Drawable, tf *transform.Transform) *Item {
	if tf == nil {
		tf = transform.Identity()
	}
	return &Item{Name: name, drawable: d, tf: tf, enabled: true}
}

// Drawable returns the backend resource.
func (it *Item) Drawable() Drawable { return it.drawable }

// Transform returns the shared transform handle.
func (it *Item) Transform() *transform.Transform { return it.tf }

// SetTransform rebinds the item to another transform handle.
func (it *Item) SetTransform(tf *transform.Transform) { it.tf = tf }

// SetMatrixSource overrides how the world matrix is computed at submit time.
// The entity store uses this to apply the parent chain.
func (it *Item) SetMatrixSource(fn func() math.Mat4) { it.matrix = fn }

// WorldMatrix returns the matrix passed to Backend.Submit.
func (it *Item) WorldMatrix() math.Mat4 {
	if it.matrix != nil {
		return it.matrix()
	}
	return it.tf.WorldMatrix()
}

func (it *Item) Enable()         { it.enabled = true }
func (it *Item) Disable()        { it.enabled = false }
func (it *Item) IsEnabled() bool { return it.enabled }

// SetAlwaysRedraw keeps the item in NeedsDraw after every successful
// submission, so FirstTimeSetup runs each frame. Used for geometry that is
// rebuilt procedurally.
func (it *Item) SetAlwaysRedraw(v bool) *Item {
	it.alwaysRedraw = v
	return it
}

func (it *Item) AlwaysRedraw() bool { return it.alwaysRedraw }
