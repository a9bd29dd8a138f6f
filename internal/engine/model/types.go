// Package model builds renderable mesh batches from a glTF scene graph and
// draws them through injected GPU capabilities.
package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one interleaved vertex: position, normal, color, texture coordinates.
// The layout is 11 tightly packed float32 values.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    mgl32.Vec3
	UV       mgl32.Vec2
}

// White is the color every assembled vertex receives.
var White = mgl32.Vec3{1, 1, 1}

// TextureKind is the shader semantic of a texture.
type TextureKind int

const (
	TextureDiffuse TextureKind = iota
	TextureSpecular
)

// String returns the uniform prefix used for the kind.
func (k TextureKind) String() string {
	switch k {
	case TextureDiffuse:
		return "diffuse"
	case TextureSpecular:
		return "specular"
	default:
		return "unknown"
	}
}

// TextureRef is a GPU-resident texture shared by every batch that uses it.
type TextureRef struct {
	Handle uint32
	Kind   TextureKind
	Unit   uint32
	Path   string
}

// MeshBatch is the resolved vertex, index and texture data of one mesh
// primitive, plus its GPU buffers once uploaded.
type MeshBatch struct {
	Name      string
	NodeIndex int
	MeshIndex int
	Vertices  []Vertex
	Indices   []uint32
	Textures  []*TextureRef

	vao uint32
	vbo uint32
	ebo uint32
}

// IndexCount returns the number of indices drawn for the batch.
func (b *MeshBatch) IndexCount() int32 {
	return int32(len(b.Indices))
}

// Uploaded reports whether the batch has GPU buffers.
func (b *MeshBatch) Uploaded() bool {
	return b.vao != 0
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// emptyBounds returns an inverted box that any point will expand.
func emptyBounds() Bounds {
	return Bounds{
		Min: mgl32.Vec3{1e10, 1e10, 1e10},
		Max: mgl32.Vec3{-1e10, -1e10, -1e10},
	}
}

// Empty reports whether no point was ever added.
func (b Bounds) Empty() bool {
	return b.Min[0] > b.Max[0]
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b *Bounds) extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
