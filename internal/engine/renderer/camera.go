package renderer

import (
	"github.com/Faultbox/spin/internal/engine/transform"
	"github.com/Faultbox/spin/pkg/math"
)

// ViewSize returns the world-space extent of the screen. The width is the
// configured viewport size; the height follows the canvas aspect ratio.
func ViewSize(viewport float32, width, height int) (w, h float32) {
	if width <= 0 || height <= 0 {
		return viewport, viewport
	}
	aspect := float32(width) / float32(height)
	return viewport, viewport / aspect
}

// Projection maps [0, w] x [0, h] to clip space with Y pointing down and a
// depth range of d centered on the camera plane.
func Projection(w, h, depth float32) math.Mat4 {
	return math.Ortho(0, w, h, 0, -depth/2, depth/2)
}

// CameraView returns the inverse of the camera transform shifted by half the
// view, so the camera position ends up in the middle of the screen.
func CameraView(camera *transform.Transform, w, h float32) math.Mat4 {
	return math.Translate(w*0.5, h*0.5, 0).Mul(camera.InverseMatrix())
}
