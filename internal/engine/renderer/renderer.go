// Package renderer is the OpenGL backend the render queue submits to.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/spin/internal/engine/mesh"
	"github.com/Faultbox/spin/internal/engine/render"
	"github.com/Faultbox/spin/internal/engine/shader"
	"github.com/Faultbox/spin/internal/engine/transform"
	"github.com/Faultbox/spin/internal/logger"
	"github.com/Faultbox/spin/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width        int
	Height       int
	ViewportSize float32
	WorldDepth   float32
	ClearColor   [4]float32
}

type gpuBuffer struct {
	vbo  uint32
	refs int
}

// Renderer draws Models with an orthographic camera. It implements
// render.FrameBackend.
type Renderer struct {
	config Config

	camera     *transform.Transform
	projection math.Mat4
	viewProj   math.Mat4
	viewW      float32
	viewH      float32

	// Position buffers shared by models with identical geometry.
	buffers map[uint64]*gpuBuffer
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config, camera *transform.Transform) (*Renderer, error) {
	if camera == nil {
		camera = transform.Identity()
	}
	r := &Renderer{
		config:  cfg,
		camera:  camera,
		buffers: make(map[uint64]*gpuBuffer),
	}

	// Initialize OpenGL bindings
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	// Log OpenGL info
	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	// Back-face culling and depth test for solid meshes
	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	// Set clear color
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])

	// Set initial viewport and projection
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close releases every GPU buffer the renderer created.
func (r *Renderer) Close() {
	logger.Info("closing renderer", zap.Int("buffers", len(r.buffers)))
	for key, b := range r.buffers {
		gl.DeleteBuffers(1, &b.vbo)
		delete(r.buffers, key)
	}
}

// Camera returns the camera transform.
func (r *Renderer) Camera() *transform.Transform { return r.camera }

// SetCamera replaces the camera transform handle.
func (r *Renderer) SetCamera(tf *transform.Transform) {
	if tf != nil {
		r.camera = tf
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	r.viewW, r.viewH = ViewSize(r.config.ViewportSize, width, height)
	r.projection = Projection(r.viewW, r.viewH, r.config.WorldDepth)
	// Update OpenGL viewport
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Float32("view_w", r.viewW),
		zap.Float32("view_h", r.viewH),
	)
}

// BeginFrame clears the framebuffer and computes the camera matrix for
// this frame.
func (r *Renderer) BeginFrame() error {
	// Clear color and depth buffers
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	r.viewProj = r.projection.Mul(CameraView(r.camera, r.viewW, r.viewH))
	return nil
}

// EndFrame flushes queued GL commands.
func (r *Renderer) EndFrame() error {
	gl.Flush()
	return glError("end frame")
}

// FirstTimeSetup uploads a model's vertex data into its VAO.
func (r *Renderer) FirstTimeSetup(d render.Drawable) error {
	m, err := asModel(d)
	if err != nil {
		return err
	}
	if m.VertexCount() == 0 {
		return fmt.Errorf("%w: %s", render.ErrNoBufferSize, m.Name)
	}
	posLoc, err := m.Program.Attribute(shader.AttributePosition)
	if err != nil {
		return err
	}
	colLoc, err := m.Program.Attribute(shader.AttributeColor)
	if err != nil {
		return err
	}

	// Create VAO on first setup
	if m.vao == 0 {
		gl.GenVertexArrays(1, &m.vao)
	}
	gl.BindVertexArray(m.vao)
	defer gl.BindVertexArray(0)

	// Position VBO (shared by geometry)
	vbo := r.positionBuffer(m)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.VertexAttribPointer(posLoc, 3, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(posLoc)

	// Color VBO (per model)
	if m.colorVBO == 0 {
		gl.GenBuffers(1, &m.colorVBO)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, m.colorVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.colors)*4, gl.Ptr(m.colors), gl.STATIC_DRAW)
	gl.VertexAttribPointer(colLoc, 4, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(colLoc)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	m.count = int32(m.VertexCount())
	return glError("setup " + m.Name)
}

// positionBuffer returns the VBO holding m's positions, uploading them if
// no model with the same geometry has done so yet.
func (r *Renderer) positionBuffer(m *Model) uint32 {
	key := (&mesh.Mesh{Positions: m.positions}).Fingerprint()
	if m.posKey != 0 && m.posKey != key {
		if old, ok := r.buffers[m.posKey]; ok {
			r.release(m.posKey, old)
		}
		m.posKey = 0
	}

	b, ok := r.buffers[key]
	if !ok {
		b = &gpuBuffer{}
		gl.GenBuffers(1, &b.vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(m.positions)*4, unsafe.Pointer(&m.positions[0]), gl.STATIC_DRAW)
		r.buffers[key] = b
		logger.Debug("position buffer uploaded",
			zap.String("model", m.Name),
			zap.Uint64("fingerprint", key),
			zap.Int("vertices", m.VertexCount()))
	}
	if m.posKey != key {
		b.refs++
		m.posKey = key
	}
	return b.vbo
}

func (r *Renderer) release(key uint64, b *gpuBuffer) {
	b.refs--
	if b.refs <= 0 {
		gl.DeleteBuffers(1, &b.vbo)
		delete(r.buffers, key)
	}
}

// Submit applies the camera and world matrices and draws the model.
func (r *Renderer) Submit(d render.Drawable, world math.Mat4) error {
	m, err := asModel(d)
	if err != nil {
		return err
	}
	loc, err := m.Program.Uniform(shader.UniformTransform)
	if err != nil {
		return fmt.Errorf("%w: %w", render.ErrNoUniform, err)
	}
	if m.count == 0 {
		return fmt.Errorf("%w: %s", render.ErrNoBufferSize, m.Name)
	}

	// Set transform uniform
	mvp := r.viewProj.Mul(world)
	m.Program.Use()
	gl.UniformMatrix4fv(loc, 1, false, mvp.Ptr())

	// Draw
	gl.BindVertexArray(m.vao)
	gl.DrawArrays(m.Mode, 0, m.count)
	gl.BindVertexArray(0)

	if err := glError("draw " + m.Name); err != nil {
		return fmt.Errorf("%w: %w", render.ErrDrawFailed, err)
	}
	return nil
}

func asModel(d render.Drawable) (*Model, error) {
	m, ok := d.(*Model)
	if !ok || m == nil {
		return nil, fmt.Errorf("renderer: unsupported drawable %T", d)
	}
	if m.Program == nil {
		return nil, fmt.Errorf("renderer: model %s has no program", m.Name)
	}
	return m, nil
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: gl error 0x%04x", op, code)
	}
	return nil
}
