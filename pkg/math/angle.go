package math

import "math"

const (
	// Pi as float32.
	Pi = float32(math.Pi)

	twoPi = 2 * math.Pi
)

// WrapAngle maps rad into (-π, π].
// The wrap is (rad + π) mod 2π - π, with the remainder shifted by 2π when
// negative; a result of exactly -π is reported as π.
func WrapAngle(rad float32) float32 {
	wrapped := math.Mod(float64(rad)+math.Pi, twoPi)
	if wrapped < 0 {
		wrapped += twoPi
	}
	wrapped -= math.Pi
	if wrapped <= -math.Pi {
		wrapped += twoPi
	}
	out := float32(wrapped)
	// float32 rounding can push a value just below -π back onto -Pi.
	if out <= -Pi {
		out = Pi
	}
	return out
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float32) float32 {
	return deg * Pi / 180
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float32) float32 {
	return rad * 180 / Pi
}

// Lerp linearly interpolates from a toward b with parameter t.
func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

// Euler holds rotation angles in radians around X (roll), Y (pitch)
// and Z (yaw).
type Euler struct {
	Roll, Pitch, Yaw float32
}

// EulerFromRadians builds wrapped Euler angles.
func EulerFromRadians(roll, pitch, yaw float32) Euler {
	return Euler{roll, pitch, yaw}.Wrapped()
}

// EulerFromDegrees builds wrapped Euler angles from degrees.
func EulerFromDegrees(roll, pitch, yaw float32) Euler {
	return EulerFromRadians(Deg2Rad(roll), Deg2Rad(pitch), Deg2Rad(yaw))
}

// Wrapped returns e with every axis wrapped into (-π, π].
func (e Euler) Wrapped() Euler {
	return Euler{WrapAngle(e.Roll), WrapAngle(e.Pitch), WrapAngle(e.Yaw)}
}

// Add returns the axis-wise sum, wrapped.
func (e Euler) Add(other Euler) Euler {
	return EulerFromRadians(e.Roll+other.Roll, e.Pitch+other.Pitch, e.Yaw+other.Yaw)
}

// Scale multiplies each axis by s without wrapping.
func (e Euler) Scale(s float32) Euler {
	return Euler{e.Roll * s, e.Pitch * s, e.Yaw * s}
}
