// Package transform holds per-entity position, rotation and scale state.
//
// A *Transform is the shared handle for that state: the entity store, any
// behavior that animates the entity, and the render item all hold the same
// pointer. Access is serialized by the scheduler's single tick at a time, so
// a Transform carries no lock; the last write within a tick wins.
package transform

import (
	"fmt"

	"github.com/Faultbox/spin/pkg/math"
)

// Transform is translation, Euler rotation and non-uniform scale for one entity.
type Transform struct {
	position math.Vec3
	rotation math.Euler
	scale    math.Vec3

	// scaleMat is rebuilt inside SetScale so WorldMatrix never sees a stale value.
	scaleMat math.Mat4
}

// Identity returns a transform at the origin with no rotation and unit scale.
func Identity() *Transform {
	return New(math.Vec3{}, math.Euler{}, math.One3())
}

// New returns a transform with the given state. Rotation is wrapped.
func New(position math.Vec3, rotation math.Euler, scale math.Vec3) *Transform {
	t := &Transform{position: position}
	t.SetEulerRotation(rotation)
	t.SetScale(scale)
	return t
}

// Clone returns an independent copy of t.
func (t *Transform) Clone() *Transform {
	c := *t
	return &c
}

// Position returns the translation.
func (t *Transform) Position() math.Vec3 {
	return t.position
}

// SetPosition sets the translation.
func (t *Transform) SetPosition(p math.Vec3) *Transform {
	t.position = p
	return t
}

// Translate moves the transform by delta.
func (t *Transform) Translate(delta math.Vec3) *Transform {
	t.position = t.position.Add(delta)
	return t
}

// Scale returns the scale.
func (t *Transform) Scale() math.Vec3 {
	return t.scale
}

// SetScale sets the scale and rebuilds the cached scale matrix.
func (t *Transform) SetScale(s math.Vec3) *Transform {
	t.scale = s
	t.scaleMat = math.ScaleVec3(s)
	return t
}

// EulerRotation returns the rotation; every axis lies in (-π, π].
func (t *Transform) EulerRotation() math.Euler {
	return t.rotation
}

// SetEulerRotation wraps each axis into (-π, π] and stores it.
func (t *Transform) SetEulerRotation(e math.Euler) *Transform {
	t.rotation = e.Wrapped()
	return t
}

// Rotate adds delta to the current rotation.
func (t *Transform) Rotate(delta math.Euler) *Transform {
	t.rotation = t.rotation.Add(delta)
	return t
}

// WorldMatrix returns translate * rotate * scale: object points are scaled,
// then rotated, then moved into parent space.
func (t *Transform) WorldMatrix() math.Mat4 {
	return math.TranslateVec3(t.position).
		Mul(math.RotateEuler(t.rotation)).
		Mul(t.scaleMat)
}

// InverseMatrix returns the inverse of WorldMatrix. Zero scale axes are
// treated as unit scale.
func (t *Transform) InverseMatrix() math.Mat4 {
	inv := func(v float32) float32 {
		if v == 0 {
			return 1
		}
		return 1 / v
	}
	p := t.position
	return math.Scale(inv(t.scale.X), inv(t.scale.Y), inv(t.scale.Z)).
		Mul(math.RotateEuler(t.rotation).Transpose()).
		Mul(math.Translate(-p.X, -p.Y, -p.Z))
}

func (t *Transform) String() string {
	r := t.rotation
	return fmt.Sprintf("Transform{pos=%v rot=(%.3f %.3f %.3f) scale=%v}",
		t.position, r.Roll, r.Pitch, r.Yaw, t.scale)
}
