package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I should equal M: got %v, want %v", result, m)
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestTransformPoint(t *testing.T) {
	got := Translate(10, 20, 30).TransformPoint(Vec3{1, 2, 3})
	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}

	got = Scale(2, 3, 4).TransformPoint(Vec3{1, 1, 1})
	want = Vec3{2, 3, 4}
	if got != want {
		t.Errorf("TransformPoint with scale: got %v, want %v", got, want)
	}
}

func TestRotateY90(t *testing.T) {
	got := RotateY(float32(math.Pi / 2)).TransformPoint(Vec3{1, 0, 0})
	if !near(got, Vec3{0, 0, -1}) {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", got)
	}
}

func TestRotateEulerOrder(t *testing.T) {
	// Roll 90 maps +Y to +Z, then yaw 90 leaves +Z alone.
	e := Euler{Roll: Pi / 2, Yaw: Pi / 2}
	got := RotateEuler(e).TransformPoint(Vec3{0, 1, 0})
	if !near(got, Vec3{0, 0, 1}) {
		t.Errorf("RotateEuler: got %v, want (0, 0, 1)", got)
	}

	// Roll 90 then yaw 90 takes +X to +Y.
	got = RotateEuler(e).TransformPoint(Vec3{1, 0, 0})
	if !near(got, Vec3{0, 1, 0}) {
		t.Errorf("RotateEuler: got %v, want (0, 1, 0)", got)
	}
}

func TestTranspose(t *testing.T) {
	m := Translate(1, 2, 3)
	tr := m.Transpose()
	if tr[3] != 1 || tr[7] != 2 || tr[11] != 3 {
		t.Errorf("Transpose: got %v", tr)
	}
	if tr.Transpose() != m {
		t.Error("Transpose twice should be identity operation")
	}
}

func TestOrthoMapsCorners(t *testing.T) {
	m := Ortho(0, 30, 20, 0, -1, 1)
	got := m.TransformPoint(Vec3{0, 0, 0})
	if !near(got, Vec3{-1, 1, 0}) {
		t.Errorf("Ortho top-left: got %v, want (-1, 1, 0)", got)
	}
	got = m.TransformPoint(Vec3{30, 20, 0})
	if !near(got, Vec3{1, -1, 0}) {
		t.Errorf("Ortho bottom-right: got %v, want (1, -1, 0)", got)
	}
}

func TestApproxEqual(t *testing.T) {
	a := Identity()
	b := Identity()
	b[5] += 1e-6
	if !a.ApproxEqual(b, 1e-5) {
		t.Error("matrices within eps should compare equal")
	}
	b[5] += 1
	if a.ApproxEqual(b, 1e-5) {
		t.Error("matrices outside eps should differ")
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func near(a, b Vec3) bool {
	return abs(a.X-b.X) < 1e-4 && abs(a.Y-b.Y) < 1e-4 && abs(a.Z-b.Z) < 1e-4
}
