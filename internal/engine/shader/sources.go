package shader

import (
	_ "embed"
	"fmt"
)

var (
	//go:embed glsl/vertex_color.vert
	VertexColorVert string

	//go:embed glsl/vertex_color.frag
	VertexColorFrag string
)

// VertexColorProgram is the name of the bundled per-vertex color program.
const VertexColorProgram = "vertex_color"

// LoadVertexColor builds the bundled per-vertex color program.
func LoadVertexColor() (*Program, error) {
	p, err := NewProgram(VertexColorProgram, VertexColorVert, VertexColorFrag,
		[]string{UniformTransform},
		[]string{AttributePosition, AttributeColor})
	if err != nil {
		return nil, fmt.Errorf("loading bundled shaders: %w", err)
	}
	return p, nil
}

// NewDetached returns a program with known locations and no GL object.
// Backends use it in tests and headless runs.
func NewDetached(name string, uniforms, attributes map[string]int32) *Program {
	p := &Program{Name: name, uniforms: map[string]int32{}, attributes: map[string]int32{}}
	for k, v := range uniforms {
		p.uniforms[k] = v
	}
	for k, v := range attributes {
		p.attributes[k] = v
	}
	return p
}
