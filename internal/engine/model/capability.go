package model

import (
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// Attribute describes one float vertex attribute inside the interleaved layout.
type Attribute struct {
	Slot   uint32
	Size   int32 // float components
	Offset int   // bytes from vertex start
}

// VertexStride is the byte size of one Vertex.
const VertexStride = 11 * 4

// VertexLayout is the attribute table for Vertex: position, normal, color, uv.
var VertexLayout = []Attribute{
	{Slot: 0, Size: 3, Offset: 0},
	{Slot: 1, Size: 3, Offset: 12},
	{Slot: 2, Size: 3, Offset: 24},
	{Slot: 3, Size: 2, Offset: 36},
}

// Buffers creates and draws GPU geometry.
type Buffers interface {
	CreateVertexBuffer(vertices []Vertex) (uint32, error)
	CreateIndexBuffer(indices []uint32) (uint32, error)
	// BindVertexLayout creates a vertex array binding vbo and ebo with the given attributes.
	BindVertexLayout(vbo, ebo uint32, attrs []Attribute) (uint32, error)
	DrawIndexedTriangles(vao uint32, count int32)
	DeleteMesh(vao, vbo, ebo uint32)
}

// Textures uploads and binds 2D textures.
type Textures interface {
	UploadImage(pix []byte, width, height, channels int) (uint32, error)
	BindTexture(handle, unit uint32)
	DeleteTexture(handle uint32)
}

// Backend is everything a Model needs from the GPU.
type Backend interface {
	Buffers
	Textures
}

// Shader is a linked shader program.
type Shader interface {
	Activate()
	SetUniformMat4(name string, m mgl32.Mat4)
	SetUniformVec3(name string, v mgl32.Vec3)
	SetUniformVec4(name string, v mgl32.Vec4)
	SetUniformInt(name string, v int32)
}

// Camera supplies the eye position and combined view-projection matrix.
type Camera interface {
	Position() mgl32.Vec3
	Matrix() mgl32.Mat4
}

// FileReader reads whole files.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// OSFiles reads from the local filesystem.
type OSFiles struct{}

// ReadFile implements FileReader.
func (OSFiles) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
