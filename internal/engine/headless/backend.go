// Package headless provides GPU-free implementations of the model
// capabilities that record every call. The inspect tool and tests use it.
package headless

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltfview/internal/engine/model"
)

// Mesh is the recorded state of one vertex array.
type Mesh struct {
	VBO, EBO uint32
	Attrs    []model.Attribute
}

// Texture is a recorded upload.
type Texture struct {
	Width, Height, Channels int
	Bytes                   int
}

// Draw is one recorded draw call.
type Draw struct {
	VAO   uint32
	Count int32
	// Bound maps texture units to handles at the time of the draw.
	Bound map[uint32]uint32
}

// Backend records buffer and texture calls in memory.
// Handles start at 1 and are never reused.
type Backend struct {
	// Fail makes the named method return an error, e.g. "UploadImage".
	Fail map[string]error

	next     uint32
	Vertices map[uint32][]model.Vertex
	Indices  map[uint32][]uint32
	Meshes   map[uint32]Mesh
	Images   map[uint32]Texture
	Draws    []Draw

	bound map[uint32]uint32
}

// NewBackend creates an empty recorder.
func NewBackend() *Backend {
	return &Backend{
		Vertices: make(map[uint32][]model.Vertex),
		Indices:  make(map[uint32][]uint32),
		Meshes:   make(map[uint32]Mesh),
		Images:   make(map[uint32]Texture),
		bound:    make(map[uint32]uint32),
	}
}

func (b *Backend) handle() uint32 {
	b.next++
	return b.next
}

func (b *Backend) failure(method string) error {
	if err, ok := b.Fail[method]; ok {
		return fmt.Errorf("headless %s: %w", method, err)
	}
	return nil
}

// CreateVertexBuffer implements model.Buffers.
func (b *Backend) CreateVertexBuffer(vertices []model.Vertex) (uint32, error) {
	if err := b.failure("CreateVertexBuffer"); err != nil {
		return 0, err
	}
	h := b.handle()
	b.Vertices[h] = append([]model.Vertex(nil), vertices...)
	return h, nil
}

// CreateIndexBuffer implements model.Buffers.
func (b *Backend) CreateIndexBuffer(indices []uint32) (uint32, error) {
	if err := b.failure("CreateIndexBuffer"); err != nil {
		return 0, err
	}
	h := b.handle()
	b.Indices[h] = append([]uint32(nil), indices...)
	return h, nil
}

// BindVertexLayout implements model.Buffers.
func (b *Backend) BindVertexLayout(vbo, ebo uint32, attrs []model.Attribute) (uint32, error) {
	if err := b.failure("BindVertexLayout"); err != nil {
		return 0, err
	}
	if _, ok := b.Vertices[vbo]; !ok {
		return 0, fmt.Errorf("headless: unknown vertex buffer %d", vbo)
	}
	if _, ok := b.Indices[ebo]; !ok {
		return 0, fmt.Errorf("headless: unknown index buffer %d", ebo)
	}
	h := b.handle()
	b.Meshes[h] = Mesh{VBO: vbo, EBO: ebo, Attrs: attrs}
	return h, nil
}

// DrawIndexedTriangles implements model.Buffers.
func (b *Backend) DrawIndexedTriangles(vao uint32, count int32) {
	bound := make(map[uint32]uint32, len(b.bound))
	for unit, h := range b.bound {
		bound[unit] = h
	}
	b.Draws = append(b.Draws, Draw{VAO: vao, Count: count, Bound: bound})
}

// DeleteMesh implements model.Buffers. Zero handles are ignored.
func (b *Backend) DeleteMesh(vao, vbo, ebo uint32) {
	delete(b.Meshes, vao)
	delete(b.Vertices, vbo)
	delete(b.Indices, ebo)
}

// UploadImage implements model.Textures.
func (b *Backend) UploadImage(pix []byte, width, height, channels int) (uint32, error) {
	if err := b.failure("UploadImage"); err != nil {
		return 0, err
	}
	if len(pix) != width*height*channels {
		return 0, fmt.Errorf("headless: %d bytes for %dx%dx%d image", len(pix), width, height, channels)
	}
	h := b.handle()
	b.Images[h] = Texture{Width: width, Height: height, Channels: channels, Bytes: len(pix)}
	return h, nil
}

// BindTexture implements model.Textures.
func (b *Backend) BindTexture(handle, unit uint32) {
	b.bound[unit] = handle
}

// DeleteTexture implements model.Textures.
func (b *Backend) DeleteTexture(handle uint32) {
	delete(b.Images, handle)
	for unit, h := range b.bound {
		if h == handle {
			delete(b.bound, unit)
		}
	}
}

// Live returns the number of buffers, vertex arrays and textures not yet deleted.
func (b *Backend) Live() int {
	return len(b.Vertices) + len(b.Indices) + len(b.Meshes) + len(b.Images)
}

// Shader records uniform values. Each Activate starts a new frame of values.
type Shader struct {
	Activations int
	Mat4        map[string]mgl32.Mat4
	Vec3        map[string]mgl32.Vec3
	Vec4        map[string]mgl32.Vec4
	Int         map[string]int32
}

// NewShader creates an empty recording shader.
func NewShader() *Shader {
	return &Shader{
		Mat4: make(map[string]mgl32.Mat4),
		Vec3: make(map[string]mgl32.Vec3),
		Vec4: make(map[string]mgl32.Vec4),
		Int:  make(map[string]int32),
	}
}

// Activate implements model.Shader.
func (s *Shader) Activate() { s.Activations++ }

// SetUniformMat4 implements model.Shader.
func (s *Shader) SetUniformMat4(name string, m mgl32.Mat4) { s.Mat4[name] = m }

// SetUniformVec3 implements model.Shader.
func (s *Shader) SetUniformVec3(name string, v mgl32.Vec3) { s.Vec3[name] = v }

// SetUniformVec4 implements model.Shader.
func (s *Shader) SetUniformVec4(name string, v mgl32.Vec4) { s.Vec4[name] = v }

// SetUniformInt implements model.Shader.
func (s *Shader) SetUniformInt(name string, v int32) { s.Int[name] = v }

// Camera is a fixed camera.
type Camera struct {
	Eye      mgl32.Vec3
	ViewProj mgl32.Mat4
}

// Position implements model.Camera.
func (c Camera) Position() mgl32.Vec3 { return c.Eye }

// Matrix implements model.Camera.
func (c Camera) Matrix() mgl32.Mat4 { return c.ViewProj }

// MemFiles is an in-memory model.FileReader keyed by slash path.
type MemFiles map[string][]byte

// ReadFile implements model.FileReader.
func (f MemFiles) ReadFile(path string) ([]byte, error) {
	data, ok := f[path]
	if !ok {
		return nil, fmt.Errorf("open %s: file does not exist", path)
	}
	return data, nil
}
