package model

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltfview/pkg/gltf"
)

// Assembly errors.
var (
	ErrVertexArityMismatch = errors.New("vertex attribute counts differ")
	ErrIndexOutOfRange     = fmt.Errorf("%w: index past vertex count", gltf.ErrMalformedAccessor)
)

// Assemble zips per-vertex attributes into a batch. All attribute slices
// must have the same length and every index must address a vertex.
func Assemble(positions, normals []mgl32.Vec3, uvs []mgl32.Vec2, indices []uint32, textures []*TextureRef) (*MeshBatch, error) {
	if len(normals) != len(positions) || len(uvs) != len(positions) {
		return nil, fmt.Errorf("%w: %d positions, %d normals, %d uvs",
			ErrVertexArityMismatch, len(positions), len(normals), len(uvs))
	}

	n := uint32(len(positions))
	for i, idx := range indices {
		if idx >= n {
			return nil, fmt.Errorf("%w: indices[%d] = %d, %d vertices", ErrIndexOutOfRange, i, idx, n)
		}
	}

	vertices := make([]Vertex, len(positions))
	for i := range positions {
		vertices[i] = Vertex{
			Position: positions[i],
			Normal:   normals[i],
			Color:    White,
			UV:       uvs[i],
		}
	}

	return &MeshBatch{
		Vertices: vertices,
		Indices:  indices,
		Textures: textures,
	}, nil
}

// Bounds returns the bounding box of the batch's positions transformed by world.
func (b *MeshBatch) Bounds(world mgl32.Mat4) Bounds {
	box := emptyBounds()
	for _, v := range b.Vertices {
		box.extend(mgl32.TransformCoordinate(v.Position, world))
	}
	return box
}

// sequentialIndices returns 0..n-1 for non-indexed primitives.
func sequentialIndices(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(i)
	}
	return out
}
