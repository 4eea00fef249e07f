// Package render holds the draw-submission queue and the contract a graphics
// backend implements to receive it.
package render

import (
	"errors"

	"github.com/Faultbox/spin/pkg/math"
)

// Drawable is an opaque backend-owned resource. The queue never inspects it.
type Drawable any

// Backend receives drawables from the queue. It is only called from the
// scheduler goroutine.
type Backend interface {
	// FirstTimeSetup uploads the drawable's resources. Called while the
	// owning entry is NeedsDraw, before Submit.
	FirstTimeSetup(d Drawable) error

	// Submit applies the world matrix and issues the draw call.
	Submit(d Drawable, world math.Mat4) error
}

// FrameBackend is implemented by backends that need to bracket a submission
// pass, for example to clear the framebuffer and compute the camera.
type FrameBackend interface {
	Backend
	BeginFrame() error
	EndFrame() error
}

// Submission failures a backend reports. They are never fatal to a tick.
var (
	ErrNoUniform    = errors.New("uniform location not found")
	ErrNoBufferSize = errors.New("drawable has no buffer size")
	ErrDrawFailed   = errors.New("draw call failed")
)
