package model_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltfview/internal/engine/headless"
	"github.com/Faultbox/gltfview/internal/engine/model"
	"github.com/Faultbox/gltfview/pkg/gltf"
)

func floatBytes(vals ...float32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// triangleBin holds positions at 0, normals at 36, uvs at 72, uint16 indices at 96.
func near(a, b mgl32.Vec3) bool {
	return a.Sub(b).Len() <= 1e-5
}

func triangleBin() []byte {
	var data []byte
	data = append(data, floatBytes(0, 0, 0, 1, 0, 0, 0, 1, 0)...)
	data = append(data, floatBytes(0, 0, 1, 0, 0, 1, 0, 0, 1)...)
	data = append(data, floatBytes(0, 0, 1, 0, 0, 1)...)
	data = append(data, 0, 0, 1, 0, 2, 0)
	return data
}

const triangleAccessors = `
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 0, "byteOffset": 36, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5126, "count": 3, "type": "VEC2"},
    {"bufferView": 2, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 72},
    {"buffer": 0, "byteOffset": 72, "byteLength": 24},
    {"buffer": 0, "byteOffset": 96, "byteLength": 6}
  ],
  "buffers": [{"uri": "tri.bin", "byteLength": 102}]`

const singleTriangle = `{
  "nodes": [{"mesh": 0}],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0, "NORMAL": 1, "TEXCOORD_0": 2}, "indices": 3}]}],
` + triangleAccessors + `
}`

const twoInstances = `{
  "nodes": [
    {"children": [1, 2]},
    {"translation": [1, 0, 0], "mesh": 0},
    {"translation": [0, 5, 0], "mesh": 0}
  ],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0, "NORMAL": 1, "TEXCOORD_0": 2}, "indices": 3}]}],
  "images": [
    {"uri": "tex/Mat_baseColor.png"},
    {"uri": "tex/Mat_metallicRoughness.png"},
    {"uri": "tex/Mat_normal.png"}
  ],
` + triangleAccessors + `
}`

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLoad_SingleTriangle(t *testing.T) {
	files := headless.MemFiles{
		"scene.gltf": []byte(singleTriangle),
		"tri.bin":    triangleBin(),
	}
	gpu := headless.NewBackend()

	m, err := model.Load("scene.gltf", gpu, model.WithFiles(files))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	batches := m.Batches()
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	b := batches[0]
	if b.Name != "tri" || b.NodeIndex != 0 || b.MeshIndex != 0 {
		t.Errorf("unexpected batch identity %q node %d mesh %d", b.Name, b.NodeIndex, b.MeshIndex)
	}
	if len(b.Vertices) != 3 || b.IndexCount() != 3 {
		t.Fatalf("expected 3 vertices and 3 indices, got %d and %d", len(b.Vertices), b.IndexCount())
	}
	if b.Vertices[1].Position != (mgl32.Vec3{1, 0, 0}) || b.Vertices[2].UV != (mgl32.Vec2{0, 1}) {
		t.Errorf("unexpected vertices %+v", b.Vertices)
	}
	if !b.Uploaded() {
		t.Error("batch should be uploaded")
	}
	if m.Transforms()[0] != mgl32.Ident4() {
		t.Errorf("expected identity transform, got %v", m.Transforms()[0])
	}

	// One vertex buffer, one index buffer, one vertex array.
	if gpu.Live() != 3 {
		t.Errorf("expected 3 live GPU objects, got %d", gpu.Live())
	}
	for _, mesh := range gpu.Meshes {
		if len(mesh.Attrs) != 4 || mesh.Attrs[3].Offset != 36 {
			t.Errorf("unexpected vertex layout %+v", mesh.Attrs)
		}
	}

	shader := headless.NewShader()
	cam := headless.Camera{Eye: mgl32.Vec3{0, 0, 2}, ViewProj: mgl32.Translate3D(0, 0, -2)}
	m.Draw(shader, cam)

	if len(gpu.Draws) != 1 || gpu.Draws[0].Count != 3 {
		t.Fatalf("expected one 3-index draw, got %+v", gpu.Draws)
	}
	if shader.Mat4["model"] != mgl32.Ident4() {
		t.Errorf("model uniform: got %v", shader.Mat4["model"])
	}
	if shader.Vec3["camPos"] != cam.Eye || shader.Mat4["camMatrix"] != cam.ViewProj {
		t.Error("camera uniforms not set")
	}
	for _, name := range []string{"translation", "rotation", "scale"} {
		if shader.Mat4[name] != mgl32.Ident4() {
			t.Errorf("%s uniform should be identity", name)
		}
	}

	box := m.Bounds()
	if !near(box.Min, mgl32.Vec3{0, 0, 0}) || !near(box.Max, mgl32.Vec3{1, 1, 0}) {
		t.Errorf("unexpected bounds %+v", box)
	}

	m.Destroy()
	if gpu.Live() != 0 {
		t.Errorf("expected no live GPU objects after Destroy, got %d", gpu.Live())
	}
}

func TestLoad_SharedTextures(t *testing.T) {
	tex := pngBytes(t)
	files := headless.MemFiles{
		"scene.gltf":                    []byte(twoInstances),
		"tri.bin":                       triangleBin(),
		"tex/Mat_baseColor.png":         tex,
		"tex/Mat_metallicRoughness.png": tex,
	}
	gpu := headless.NewBackend()

	m, err := model.Load("scene.gltf", gpu, model.WithFiles(files))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer m.Destroy()

	if len(gpu.Images) != 2 {
		t.Fatalf("expected 2 texture uploads, got %d", len(gpu.Images))
	}
	batches := m.Batches()
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	for i, b := range batches {
		if len(b.Textures) != 2 {
			t.Fatalf("batch %d: expected 2 textures, got %d", i, len(b.Textures))
		}
	}
	if batches[0].Textures[0] != batches[1].Textures[0] {
		t.Error("batches should share the same TextureRef")
	}

	refs := m.Textures()
	if refs[0].Kind != model.TextureDiffuse || refs[0].Unit != 0 {
		t.Errorf("first texture: %+v", refs[0])
	}
	if refs[1].Kind != model.TextureSpecular || refs[1].Unit != 1 {
		t.Errorf("second texture: %+v", refs[1])
	}

	want := []mgl32.Vec3{{1, 0, 0}, {0, 5, 0}}
	for i, w := range m.Transforms() {
		if p := mgl32.TransformCoordinate(mgl32.Vec3{}, w); !near(p, want[i]) {
			t.Errorf("transform %d: origin at %v, want %v", i, p, want[i])
		}
	}

	shader := headless.NewShader()
	m.Draw(shader, headless.Camera{})
	if shader.Int["diffuse0"] != 0 || shader.Int["specular0"] != 1 {
		t.Errorf("unexpected sampler uniforms %v", shader.Int)
	}
	if len(gpu.Draws) != 2 {
		t.Fatalf("expected 2 draws, got %d", len(gpu.Draws))
	}
	if gpu.Draws[1].Bound[1] != refs[1].Handle {
		t.Errorf("specular texture not bound to unit 1: %v", gpu.Draws[1].Bound)
	}
	if shader.Activations != 2 {
		t.Errorf("expected 2 activations, got %d", shader.Activations)
	}
}

func TestLoad_MissingOptionalAttributes(t *testing.T) {
	doc := `{
  "nodes": [{"mesh": 0}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
` + triangleAccessors + `
}`
	files := headless.MemFiles{"a/scene.gltf": []byte(doc), "a/tri.bin": triangleBin()}

	m, err := model.Load("a/scene.gltf", headless.NewBackend(), model.WithFiles(files))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b := m.Batches()[0]
	for i, v := range b.Vertices {
		if v.Normal != (mgl32.Vec3{}) || v.UV != (mgl32.Vec2{}) {
			t.Errorf("vertex %d: expected zero normal and uv, got %+v", i, v)
		}
	}
	if len(b.Indices) != 3 || b.Indices[2] != 2 {
		t.Errorf("expected sequential indices, got %v", b.Indices)
	}
}

func TestLoad_KindIgnoresDirectory(t *testing.T) {
	doc := `{
  "nodes": [{"mesh": 0}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
  "images": [{"uri": "Mat_normal.png"}],
` + triangleAccessors + `
}`
	files := headless.MemFiles{
		"assets/baseColor_pack/scene.gltf":     []byte(doc),
		"assets/baseColor_pack/tri.bin":        triangleBin(),
		"assets/baseColor_pack/Mat_normal.png": pngBytes(t),
	}
	gpu := headless.NewBackend()

	m, err := model.Load("assets/baseColor_pack/scene.gltf", gpu, model.WithFiles(files))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer m.Destroy()

	if n := len(m.Textures()); n != 0 {
		t.Errorf("expected 0 textures, got %d", n)
	}
	if len(gpu.Images) != 0 {
		t.Errorf("expected no uploads, got %d", len(gpu.Images))
	}
}

func TestLoad_WithRoot(t *testing.T) {
	doc := `{
  "nodes": [
    {"children": [1, 2]},
    {"translation": [1, 0, 0], "mesh": 0},
    {"translation": [0, 5, 0], "mesh": 0}
  ],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 3}]}],
` + triangleAccessors + `
}`
	files := headless.MemFiles{"scene.gltf": []byte(doc), "tri.bin": triangleBin()}

	m, err := model.Load("scene.gltf", headless.NewBackend(), model.WithFiles(files), model.WithRoot(2))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Batches()) != 1 || m.Batches()[0].NodeIndex != 2 {
		t.Fatalf("expected only node 2, got %d batches", len(m.Batches()))
	}
	if p := mgl32.TransformCoordinate(mgl32.Vec3{}, m.Transforms()[0]); !near(p, mgl32.Vec3{0, 5, 0}) {
		t.Errorf("root transform should not include the skipped parent, origin at %v", p)
	}
}

func TestLoad_Errors(t *testing.T) {
	tex := pngBytes(t)

	tests := []struct {
		name    string
		files   headless.MemFiles
		fail    map[string]error
		wantErr error
	}{
		{
			name:    "missing document",
			files:   headless.MemFiles{},
			wantErr: gltf.ErrFileNotReadable,
		},
		{
			name:    "missing buffer",
			files:   headless.MemFiles{"scene.gltf": []byte(singleTriangle)},
			wantErr: gltf.ErrFileNotReadable,
		},
		{
			name:    "truncated buffer",
			files:   headless.MemFiles{"scene.gltf": []byte(singleTriangle), "tri.bin": triangleBin()[:50]},
			wantErr: gltf.ErrOutOfBounds,
		},
		{
			name: "missing texture",
			files: headless.MemFiles{
				"scene.gltf": []byte(twoInstances),
				"tri.bin":    triangleBin(),
			},
			wantErr: gltf.ErrFileNotReadable,
		},
		{
			name: "no position",
			files: headless.MemFiles{
				"scene.gltf": []byte(strings.Replace(singleTriangle, `"POSITION": 0, `, "", 1)),
				"tri.bin":    triangleBin(),
			},
			wantErr: gltf.ErrMalformedAccessor,
		},
		{
			name: "normal accessor is not VEC3",
			files: headless.MemFiles{
				"scene.gltf": []byte(strings.Replace(singleTriangle, `"NORMAL": 1`, `"NORMAL": 2`, 1)),
				"tri.bin":    triangleBin(),
			},
			wantErr: gltf.ErrMalformedAccessor,
		},
		{
			name: "normal count differs",
			files: headless.MemFiles{
				"scene.gltf": []byte(strings.Replace(singleTriangle, `"byteOffset": 36, "componentType": 5126, "count": 3`, `"byteOffset": 36, "componentType": 5126, "count": 2`, 1)),
				"tri.bin":    triangleBin(),
			},
			wantErr: model.ErrVertexArityMismatch,
		},
		{
			name: "cyclic graph",
			files: headless.MemFiles{
				"scene.gltf": []byte(strings.Replace(singleTriangle, `{"mesh": 0}`, `{"mesh": 0, "children": [0]}`, 1)),
				"tri.bin":    triangleBin(),
			},
			wantErr: model.ErrCyclicGraph,
		},
		{
			name: "upload failure",
			files: headless.MemFiles{
				"scene.gltf":                    []byte(twoInstances),
				"tri.bin":                       triangleBin(),
				"tex/Mat_baseColor.png":         tex,
				"tex/Mat_metallicRoughness.png": tex,
			},
			fail:    map[string]error{"BindVertexLayout": errors.New("out of memory")},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gpu := headless.NewBackend()
			gpu.Fail = tt.fail

			m, err := model.Load("scene.gltf", gpu, model.WithFiles(tt.files))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if m != nil {
				t.Error("no model expected on error")
			}
			if gpu.Live() != 0 {
				t.Errorf("expected all GPU objects released, %d live", gpu.Live())
			}
		})
	}
}
