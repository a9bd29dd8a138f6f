// Package renderer provides the OpenGL implementation of the model GPU capabilities.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/gltfview/internal/engine/model"
	"github.com/Faultbox/gltfview/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor  mgl32.Vec4
	Wireframe   bool
	Multisample bool
}

// Renderer owns global GL state and creates buffers and textures for models.
type Renderer struct {
	config Config
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	if cfg.Multisample {
		gl.Enable(gl.MULTISAMPLE)
	}
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	if cfg.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}

	r := &Renderer{config: cfg}
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close releases renderer state. Models and shaders are released by their owners.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Wireframe toggles line rasterization.
func (r *Renderer) Wireframe(on bool) {
	r.config.Wireframe = on
	if on {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// createBuffer uploads data through the ARRAY_BUFFER target. Element buffers
// are attached to their vertex array later in BindVertexLayout.
func createBuffer(ptr unsafe.Pointer, size int) (uint32, error) {
	var buf uint32
	gl.GenBuffers(1, &buf)
	if buf == 0 {
		return 0, fmt.Errorf("glGenBuffers returned no buffer")
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, buf)
	gl.BufferData(gl.ARRAY_BUFFER, size, ptr, gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteBuffers(1, &buf)
		return 0, fmt.Errorf("buffer upload: GL error 0x%x", code)
	}
	return buf, nil
}

// CreateVertexBuffer uploads interleaved vertices.
func (r *Renderer) CreateVertexBuffer(vertices []model.Vertex) (uint32, error) {
	var ptr unsafe.Pointer
	if len(vertices) > 0 {
		ptr = unsafe.Pointer(&vertices[0])
	}
	return createBuffer(ptr, len(vertices)*int(unsafe.Sizeof(model.Vertex{})))
}

// CreateIndexBuffer uploads uint32 triangle indices.
func (r *Renderer) CreateIndexBuffer(indices []uint32) (uint32, error) {
	var ptr unsafe.Pointer
	if len(indices) > 0 {
		ptr = unsafe.Pointer(&indices[0])
	}
	return createBuffer(ptr, len(indices)*4)
}

// BindVertexLayout creates a VAO describing attrs over vbo with ebo as its element buffer.
func (r *Renderer) BindVertexLayout(vbo, ebo uint32, attrs []model.Attribute) (uint32, error) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	if vao == 0 {
		return 0, fmt.Errorf("glGenVertexArrays returned no array")
	}
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	for _, a := range attrs {
		gl.VertexAttribPointerWithOffset(a.Slot, a.Size, gl.FLOAT, false, model.VertexStride, uintptr(a.Offset))
		gl.EnableVertexAttribArray(a.Slot)
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteVertexArrays(1, &vao)
		return 0, fmt.Errorf("vertex layout: GL error 0x%x", code)
	}
	return vao, nil
}

// DrawIndexedTriangles draws count uint32 indices from vao.
func (r *Renderer) DrawIndexedTriangles(vao uint32, count int32) {
	gl.BindVertexArray(vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, count, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

// DeleteMesh releases a vertex array and its buffers. Zero handles are skipped.
func (r *Renderer) DeleteMesh(vao, vbo, ebo uint32) {
	if vao != 0 {
		gl.DeleteVertexArrays(1, &vao)
	}
	if vbo != 0 {
		gl.DeleteBuffers(1, &vbo)
	}
	if ebo != 0 {
		gl.DeleteBuffers(1, &ebo)
	}
}

// UploadImage creates a mipmapped 2D texture from 8-bit pixels.
func (r *Renderer) UploadImage(pix []byte, width, height, channels int) (uint32, error) {
	var format int32
	switch channels {
	case 4:
		format = gl.RGBA
	case 3:
		format = gl.RGB
	case 1:
		format = gl.RED
	default:
		return 0, fmt.Errorf("unsupported channel count %d", channels)
	}
	if width <= 0 || height <= 0 || len(pix) < width*height*channels {
		return 0, fmt.Errorf("%d bytes for %dx%d image with %d channels", len(pix), width, height, channels)
	}

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, format, int32(width), int32(height), 0, uint32(format), gl.UNSIGNED_BYTE, unsafe.Pointer(&pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &texID)
		return 0, fmt.Errorf("texture upload: GL error 0x%x", code)
	}
	return texID, nil
}

// BindTexture binds handle to texture unit.
func (r *Renderer) BindTexture(handle, unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, handle)
}

// DeleteTexture releases a texture.
func (r *Renderer) DeleteTexture(handle uint32) {
	if handle != 0 {
		gl.DeleteTextures(1, &handle)
	}
}

// ReadPixels returns the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	if w <= 0 || h <= 0 {
		return nil, 0, 0
	}
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

var _ model.Backend = (*Renderer)(nil)
