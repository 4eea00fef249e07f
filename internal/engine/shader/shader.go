// Package shader provides OpenGL shader compilation and location lookup.
package shader

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Location names shared by the renderer and the bundled programs.
const (
	UniformTransform  = "u_transformationMatrix"
	AttributePosition = "a_position"
	AttributeColor    = "a_color"
)

var (
	ErrUniformNotFound   = errors.New("uniform not found")
	ErrAttributeNotFound = errors.New("attribute not found")
)

// Program is a linked GL program with its resolved locations.
type Program struct {
	Name string
	ID   uint32

	uniforms   map[string]int32
	attributes map[string]int32
}

// NewProgram compiles and links the sources, then resolves the named
// uniforms and attributes. Names GL reports as inactive are left out; they
// surface as errors from Uniform and Attribute at draw time.
func NewProgram(name, vertexSrc, fragmentSrc string, uniforms, attributes []string) (*Program, error) {
	id, err := CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", name, err)
	}
	p := &Program{
		Name:       name,
		ID:         id,
		uniforms:   resolve(uniforms, func(n string) int32 { return gl.GetUniformLocation(id, gl.Str(n+"\x00")) }),
		attributes: resolve(attributes, func(n string) int32 { return gl.GetAttribLocation(id, gl.Str(n+"\x00")) }),
	}
	return p, nil
}

// resolve keeps the names whose location is non-negative.
func resolve(names []string, lookup func(string) int32) map[string]int32 {
	out := make(map[string]int32, len(names))
	for _, n := range names {
		if loc := lookup(n); loc >= 0 {
			out[n] = loc
		}
	}
	return out
}

// Uniform returns a resolved uniform location.
func (p *Program) Uniform(name string) (int32, error) {
	loc, ok := p.uniforms[name]
	if !ok {
		return -1, fmt.Errorf("%w: %s in program %s", ErrUniformNotFound, name, p.Name)
	}
	return loc, nil
}

// Attribute returns a resolved attribute location.
func (p *Program) Attribute(name string) (uint32, error) {
	loc, ok := p.attributes[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s in program %s", ErrAttributeNotFound, name, p.Name)
	}
	return uint32(loc), nil
}

// Use binds the program.
func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

// Delete releases the GL program.
func (p *Program) Delete() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error if compilation/linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", infoLog(logLen, func(buf *uint8) {
			gl.GetProgramInfoLog(program, logLen, nil, buf)
		}))
	}

	return program, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		msg := infoLog(logLen, func(buf *uint8) {
			gl.GetShaderInfoLog(shader, logLen, nil, buf)
		})
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, msg)
	}

	return shader, nil
}

func infoLog(n int32, read func(*uint8)) string {
	if n <= 0 {
		return "(no log)"
	}
	buf := make([]byte, n)
	read(&buf[0])
	return string(buf[:n-1])
}
