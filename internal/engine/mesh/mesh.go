// Package mesh parses Wavefront OBJ geometry into flat triangle lists and
// loads it without blocking the scheduler.
package mesh

import (
	"encoding/binary"
	gomath "math"

	"github.com/cespare/xxhash/v2"

	"github.com/Faultbox/spin/pkg/math"
)

// Mesh is a flat triangle list: three float32 per vertex, three vertices
// per triangle.
type Mesh struct {
	Name      string
	Positions []float32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return m.VertexCount() / 3
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) math.Vec3 {
	p := m.Positions[i*3 : i*3+3]
	return math.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

// Bounds returns the axis-aligned bounding box. An empty mesh returns zeros.
func (m *Mesh) Bounds() (lo, hi math.Vec3) {
	n := m.VertexCount()
	if n == 0 {
		return
	}
	lo, hi = m.Vertex(0), m.Vertex(0)
	for i := 1; i < n; i++ {
		v := m.Vertex(i)
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return lo, hi
}

// Fingerprint hashes the position data. Meshes with identical geometry
// share a fingerprint regardless of name.
func (m *Mesh) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [4]byte
	for _, f := range m.Positions {
		binary.LittleEndian.PutUint32(buf[:], gomath.Float32bits(f))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// Cube returns a closed cube spanning [0, size] on every axis.
func Cube(size float32) *Mesh {
	corners := [8]math.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
	faces := [6][4]int{
		{0, 3, 2, 1}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4},
		{1, 2, 6, 5},
		{2, 3, 7, 6},
		{3, 0, 4, 7},
	}

	m := &Mesh{Name: "cube", Positions: make([]float32, 0, 6*2*3*3)}
	for _, f := range faces {
		for _, idx := range [6]int{f[0], f[1], f[2], f[0], f[2], f[3]} {
			c := corners[idx].Scale(size)
			m.Positions = append(m.Positions, c.X, c.Y, c.Z)
		}
	}
	return m
}

// Square returns two triangles covering [0, size] on X and Y at Z=0.
func Square(size float32) *Mesh {
	s := size
	return &Mesh{Name: "square", Positions: []float32{
		0, 0, 0, s, 0, 0, 0, s, 0,
		0, s, 0, s, 0, 0, s, s, 0,
	}}
}
