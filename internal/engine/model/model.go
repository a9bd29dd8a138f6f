package model

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/gltfview/pkg/gltf"
)

// Model is a loaded glTF scene ready to draw: one batch per mesh-carrying
// node with its world transform.
type Model struct {
	Path string

	gpu        Backend
	log        *zap.Logger
	textures   *TextureCache
	batches    []*MeshBatch
	transforms []mgl32.Mat4
	bounds     Bounds
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	log   *zap.Logger
	root  int
	files FileReader
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(o *loadOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// WithRoot starts traversal at the given node instead of node 0.
func WithRoot(node int) Option {
	return func(o *loadOptions) { o.root = node }
}

// WithFiles replaces the filesystem used to read the document, buffer and images.
func WithFiles(files FileReader) Option {
	return func(o *loadOptions) {
		if files != nil {
			o.files = files
		}
	}
}

// Load reads a .gltf file, assembles every mesh reachable from the root node
// and uploads it through gpu. Nothing stays on the GPU if Load fails.
func Load(path string, gpu Backend, opts ...Option) (*Model, error) {
	o := loadOptions{log: zap.NewNop(), files: OSFiles{}}
	for _, opt := range opts {
		opt(&o)
	}

	data, err := o.files.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", gltf.ErrFileNotReadable, path, err)
	}
	doc, err := gltf.ParseDocument(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	o.log.Debug("document parsed",
		zap.String("path", path),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("accessors", len(doc.Accessors)))

	blob, err := doc.LoadBlob(o.files.ReadFile)
	if err != nil {
		return nil, err
	}

	m := &Model{
		Path:     path,
		gpu:      gpu,
		log:      o.log,
		textures: NewTextureCache(gpu, o.files, o.log),
		bounds:   emptyBounds(),
	}

	loader := &meshLoader{
		doc:      doc,
		resolver: gltf.NewResolver(doc, blob),
		images:   doc.ImagePaths(),
		textures: m.textures,
	}

	err = Walk(doc, o.root, func(node int, world mgl32.Mat4, mesh int) error {
		batch, err := loader.load(mesh)
		if err != nil {
			return fmt.Errorf("node %d mesh %d: %w", node, mesh, err)
		}
		batch.NodeIndex = node
		if err := m.upload(batch); err != nil {
			return fmt.Errorf("node %d mesh %d: %w", node, mesh, err)
		}

		m.batches = append(m.batches, batch)
		m.transforms = append(m.transforms, world)
		box := batch.Bounds(world)
		m.bounds.extend(box.Min)
		m.bounds.extend(box.Max)

		o.log.Debug("batch assembled",
			zap.Int("node", node),
			zap.String("mesh", batch.Name),
			zap.Int("vertices", len(batch.Vertices)),
			zap.Int("indices", len(batch.Indices)),
			zap.Int("textures", len(batch.Textures)))
		return nil
	})
	if err != nil {
		m.Destroy()
		return nil, err
	}

	o.log.Info("model loaded",
		zap.String("path", path),
		zap.Int("batches", len(m.batches)),
		zap.Int("textures", m.textures.Uploads()))
	return m, nil
}

// meshLoader resolves mesh primitives into batches.
type meshLoader struct {
	doc      *gltf.Document
	resolver *gltf.Resolver
	images   []string
	textures *TextureCache
}

func (l *meshLoader) load(meshIndex int) (*MeshBatch, error) {
	mesh, err := l.doc.Mesh(meshIndex)
	if err != nil {
		return nil, err
	}
	if len(mesh.Primitives) == 0 {
		return nil, fmt.Errorf("%w: mesh has no primitives", gltf.ErrMalformedDocument)
	}
	prim := mesh.Primitives[0]

	posIndex, ok := prim.Attributes[gltf.AttrPosition]
	if !ok {
		return nil, fmt.Errorf("%w: primitive has no POSITION", gltf.ErrMalformedAccessor)
	}
	positions, err := l.resolver.ResolveVec3(posIndex)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	normals := make([]mgl32.Vec3, len(positions))
	if i, ok := prim.Attributes[gltf.AttrNormal]; ok {
		if normals, err = l.resolver.ResolveVec3(i); err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}

	uvs := make([]mgl32.Vec2, len(positions))
	if i, ok := prim.Attributes[gltf.AttrTexCoord0]; ok {
		if uvs, err = l.resolver.ResolveVec2(i); err != nil {
			return nil, fmt.Errorf("texcoords: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = l.resolver.ResolveIndices(*prim.Indices); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = sequentialIndices(len(positions))
	}

	// Every mesh gets every recognized image of the document.
	var textures []*TextureRef
	for _, path := range l.images {
		ref, ok, err := l.textures.Load(path)
		if err != nil {
			return nil, err
		}
		if ok {
			textures = append(textures, ref)
		}
	}

	batch, err := Assemble(positions, normals, uvs, indices, textures)
	if err != nil {
		return nil, err
	}
	batch.Name = mesh.Name
	batch.MeshIndex = meshIndex
	return batch, nil
}

// upload creates the batch's GPU buffers, releasing partial work on failure.
func (m *Model) upload(b *MeshBatch) error {
	vbo, err := m.gpu.CreateVertexBuffer(b.Vertices)
	if err != nil {
		return fmt.Errorf("vertex buffer: %w", err)
	}
	ebo, err := m.gpu.CreateIndexBuffer(b.Indices)
	if err != nil {
		m.gpu.DeleteMesh(0, vbo, 0)
		return fmt.Errorf("index buffer: %w", err)
	}
	vao, err := m.gpu.BindVertexLayout(vbo, ebo, VertexLayout)
	if err != nil {
		m.gpu.DeleteMesh(0, vbo, ebo)
		return fmt.Errorf("vertex layout: %w", err)
	}
	b.vao, b.vbo, b.ebo = vao, vbo, ebo
	return nil
}

// Draw renders every batch in load order with its world transform.
func (m *Model) Draw(shader Shader, cam Camera) {
	ident := mgl32.Ident4()
	for i, b := range m.batches {
		shader.Activate()

		var diffuse, specular int
		for _, tex := range b.Textures {
			var n int
			if tex.Kind == TextureDiffuse {
				n = diffuse
				diffuse++
			} else {
				n = specular
				specular++
			}
			shader.SetUniformInt(tex.Kind.String()+strconv.Itoa(n), int32(tex.Unit))
			m.gpu.BindTexture(tex.Handle, tex.Unit)
		}

		shader.SetUniformVec3("camPos", cam.Position())
		shader.SetUniformMat4("camMatrix", cam.Matrix())
		shader.SetUniformMat4("model", m.transforms[i])
		shader.SetUniformMat4("translation", ident)
		shader.SetUniformMat4("rotation", ident)
		shader.SetUniformMat4("scale", ident)

		m.gpu.DrawIndexedTriangles(b.vao, b.IndexCount())
	}
}

// Batches returns the mesh batches in traversal order.
func (m *Model) Batches() []*MeshBatch {
	return m.batches
}

// Transforms returns the world transforms, parallel to Batches.
func (m *Model) Transforms() []mgl32.Mat4 {
	return m.transforms
}

// Textures returns the uploaded textures in upload order.
func (m *Model) Textures() []*TextureRef {
	return m.textures.Refs()
}

// Bounds returns the world-space bounding box of all batches.
func (m *Model) Bounds() Bounds {
	return m.bounds
}

// Destroy releases all GPU resources. The model must not be drawn afterwards.
func (m *Model) Destroy() {
	for _, b := range m.batches {
		if b.Uploaded() {
			m.gpu.DeleteMesh(b.vao, b.vbo, b.ebo)
			b.vao, b.vbo, b.ebo = 0, 0, 0
		}
	}
	m.batches = nil
	m.transforms = nil
	m.textures.Release()
}
