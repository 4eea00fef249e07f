package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/spin/internal/engine/mesh"
	"github.com/Faultbox/spin/internal/engine/shader"
	"github.com/Faultbox/spin/pkg/math"
)

// Color is a straight RGBA color in [0, 1].
type Color [4]float32

var White = Color{1, 1, 1, 1}

// Model is the drawable the GL backend understands: flat positions with
// one color per vertex, drawn with a single program.
type Model struct {
	Name    string
	Program *shader.Program
	Mode    uint32

	positions []float32
	colors    []float32

	// GL state, owned by the renderer.
	vao      uint32
	colorVBO uint32
	posKey   uint64
	count    int32
}

// NewModel returns a triangle model of m in a single color.
func NewModel(m *mesh.Mesh, color Color, prog *shader.Program) *Model {
	n := m.VertexCount()
	colors := make([]float32, 0, n*4)
	for i := 0; i < n; i++ {
		colors = append(colors, color[:]...)
	}
	return &Model{
		Name:      m.Name,
		Program:   prog,
		Mode:      gl.TRIANGLES,
		positions: m.Positions,
		colors:    colors,
	}
}

// VertexCount returns the number of vertices drawn.
func (m *Model) VertexCount() int {
	return len(m.positions) / 3
}

// Positions returns the position data.
func (m *Model) Positions() []float32 { return m.positions }

// Colors returns the per-vertex RGBA data.
func (m *Model) Colors() []float32 { return m.colors }

// SetColor recolors every vertex. The owning render item must be
// invalidated for the change to reach the GPU.
func (m *Model) SetColor(c Color) {
	for i := 0; i+3 < len(m.colors); i += 4 {
		copy(m.colors[i:i+4], c[:])
	}
}

// LineBuilder accumulates colored line segments into a Model.
type LineBuilder struct {
	program   *shader.Program
	color     Color
	positions []float32
	colors    []float32
}

// NewLines starts a line model drawn with prog in white.
func NewLines(prog *shader.Program) *LineBuilder {
	return &LineBuilder{program: prog, color: White}
}

// DefaultColor sets the color used by AddLine.
func (b *LineBuilder) DefaultColor(c Color) *LineBuilder {
	b.color = c
	return b
}

// AddLine adds a segment in the default color.
func (b *LineBuilder) AddLine(from, to math.Vec3) *LineBuilder {
	return b.AddLineColor(from, to, b.color)
}

// AddLineColor adds a segment in c.
func (b *LineBuilder) AddLineColor(from, to math.Vec3, c Color) *LineBuilder {
	b.positions = append(b.positions, from.X, from.Y, from.Z, to.X, to.Y, to.Z)
	b.colors = append(b.colors, c[:]...)
	b.colors = append(b.colors, c[:]...)
	return b
}

// Build returns the line model. An empty builder yields a model with no
// vertices, which the renderer rejects at setup.
func (b *LineBuilder) Build(name string) *Model {
	return &Model{
		Name:      name,
		Program:   b.program,
		Mode:      gl.LINES,
		positions: b.positions,
		colors:    b.colors,
	}
}

// Reset drops every segment added so far.
func (b *LineBuilder) Reset() *LineBuilder {
	b.positions = b.positions[:0]
	b.colors = b.colors[:0]
	return b
}

// Rebuild replaces m's vertex data with the builder's segments. The render
// item holding m must be redrawn from scratch for the change to show.
func (b *LineBuilder) Rebuild(m *Model) {
	m.positions = append(m.positions[:0], b.positions...)
	m.colors = append(m.colors[:0], b.colors...)
}

// Axes returns a builder holding the X, Y and Z axes of the given length,
// each in its own color.
func Axes(prog *shader.Program, length float32) *LineBuilder {
	o := math.Vec3{}
	return NewLines(prog).
		AddLineColor(o, math.Vec3{X: length}, Color{1, 0, 0, 1}).
		AddLineColor(o, math.Vec3{Y: length}, Color{0, 1, 0, 1}).
		AddLineColor(o, math.Vec3{Z: length}, Color{0, 0, 1, 1})
}

// Grid returns a builder holding a cells×cells square of lines on the XZ
// plane at height y, centered on the origin.
func Grid(prog *shader.Program, cells int, cellSize, y float32) *LineBuilder {
	b := NewLines(prog).DefaultColor(Color{0.5, 0.5, 0.5, 1})
	half := float32(cells) * cellSize / 2
	for i := 0; i <= cells; i++ {
		at := float32(i)*cellSize - half
		b.AddLine(math.Vec3{X: at, Y: y, Z: -half}, math.Vec3{X: at, Y: y, Z: half})
		b.AddLine(math.Vec3{X: -half, Y: y, Z: at}, math.Vec3{X: half, Y: y, Z: at})
	}
	return b
}

// Box adds the twelve edges of the axis-aligned box [lo, hi] in the default
// color.
func (b *LineBuilder) Box(lo, hi math.Vec3) *LineBuilder {
	corner := func(x, y, z bool) math.Vec3 {
		c := lo
		if x {
			c.X = hi.X
		}
		if y {
			c.Y = hi.Y
		}
		if z {
			c.Z = hi.Z
		}
		return c
	}
	for _, y := range []bool{false, true} {
		b.AddLine(corner(false, y, false), corner(true, y, false))
		b.AddLine(corner(true, y, false), corner(true, y, true))
		b.AddLine(corner(true, y, true), corner(false, y, true))
		b.AddLine(corner(false, y, true), corner(false, y, false))
	}
	for _, x := range []bool{false, true} {
		for _, z := range []bool{false, true} {
			b.AddLine(corner(x, false, z), corner(x, true, z))
		}
	}
	return b
}
