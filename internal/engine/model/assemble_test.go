package model

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltfview/pkg/gltf"
)

func TestAssemble(t *testing.T) {
	positions := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	normals := []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	uvs := []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}}

	batch, err := Assemble(positions, normals, uvs, []uint32{0, 1, 2}, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(batch.Vertices) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(batch.Vertices))
	}
	for i, v := range batch.Vertices {
		if v.Position != positions[i] || v.Normal != normals[i] || v.UV != uvs[i] {
			t.Errorf("vertex %d: unexpected %+v", i, v)
		}
		if v.Color != White {
			t.Errorf("vertex %d: expected white, got %v", i, v.Color)
		}
	}
	if batch.IndexCount() != 3 {
		t.Errorf("expected 3 indices, got %d", batch.IndexCount())
	}
}

func TestAssemble_Errors(t *testing.T) {
	three := []mgl32.Vec3{{}, {}, {}}
	uvs := []mgl32.Vec2{{}, {}, {}}

	tests := []struct {
		name    string
		normals []mgl32.Vec3
		uvs     []mgl32.Vec2
		indices []uint32
		wantErr error
	}{
		{"short normals", three[:2], uvs, nil, ErrVertexArityMismatch},
		{"long uvs", three, append(uvs, mgl32.Vec2{}), nil, ErrVertexArityMismatch},
		{"index past end", three, uvs, []uint32{0, 1, 3}, ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := Assemble(three, tt.normals, tt.uvs, tt.indices, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if batch != nil {
				t.Error("no batch expected on error")
			}
		})
	}

	_, err := Assemble(three, three, uvs, []uint32{7}, nil)
	if !errors.Is(err, gltf.ErrMalformedAccessor) {
		t.Errorf("out of range index should be a malformed accessor, got %v", err)
	}
}

func TestMeshBatch_Bounds(t *testing.T) {
	batch := &MeshBatch{Vertices: []Vertex{
		{Position: mgl32.Vec3{-1, 0, 2}},
		{Position: mgl32.Vec3{3, -2, 0}},
	}}

	box := batch.Bounds(mgl32.Translate3D(0, 10, 0))
	if !near(box.Min, mgl32.Vec3{-1, 8, 0}) || !near(box.Max, mgl32.Vec3{3, 10, 2}) {
		t.Errorf("unexpected bounds %+v", box)
	}
	if !near(box.Center(), mgl32.Vec3{1, 9, 1}) {
		t.Errorf("unexpected center %v", box.Center())
	}

	if !(&MeshBatch{}).Bounds(mgl32.Ident4()).Empty() {
		t.Error("bounds of an empty batch should be empty")
	}
}

func TestKindForPath(t *testing.T) {
	tests := []struct {
		path string
		kind TextureKind
		ok   bool
	}{
		{"textures/Material_baseColor.png", TextureDiffuse, true},
		{"textures/Material_metallicRoughness.png", TextureSpecular, true},
		{"textures/Material_normal.png", 0, false},
		{"basecolor.png", 0, false},
		{"assets/baseColor_pack/Mat_normal.png", 0, false},
		{"assets/baseColor_pack/Mat_metallicRoughness.png", TextureSpecular, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			kind, ok := KindForPath(tt.path)
			if ok != tt.ok || kind != tt.kind {
				t.Errorf("expected (%v, %v), got (%v, %v)", tt.kind, tt.ok, kind, ok)
			}
		})
	}
}
