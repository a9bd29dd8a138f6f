package model_test

import (
	"errors"
	"testing"

	"github.com/Faultbox/gltfview/internal/engine/headless"
	"github.com/Faultbox/gltfview/internal/engine/model"
	"github.com/Faultbox/gltfview/pkg/gltf"
)

func TestTextureCache_Idempotent(t *testing.T) {
	files := headless.MemFiles{
		"a_baseColor.png":         pngBytes(t),
		"a_metallicRoughness.png": pngBytes(t),
	}
	gpu := headless.NewBackend()
	cache := model.NewTextureCache(gpu, files, nil)

	first, ok, err := cache.Load("a_baseColor.png")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	second, ok, err := cache.Load("a_baseColor.png")
	if err != nil || !ok {
		t.Fatalf("second Load: ok=%v err=%v", ok, err)
	}
	if first != second {
		t.Error("same path should return the same TextureRef")
	}
	if cache.Uploads() != 1 || len(gpu.Images) != 1 {
		t.Errorf("expected 1 upload, got %d (%d on GPU)", cache.Uploads(), len(gpu.Images))
	}

	spec, _, err := cache.Load("a_metallicRoughness.png")
	if err != nil {
		t.Fatalf("Load specular: %v", err)
	}
	if spec.Kind != model.TextureSpecular || spec.Unit != 1 {
		t.Errorf("expected specular on unit 1, got %+v", spec)
	}
	if first.Unit != 0 || first.Kind != model.TextureDiffuse {
		t.Errorf("expected diffuse on unit 0, got %+v", first)
	}
	if img := gpu.Images[first.Handle]; img.Width != 2 || img.Channels != 4 {
		t.Errorf("unexpected upload %+v", img)
	}

	cache.Release()
	if len(gpu.Images) != 0 || cache.Uploads() != 0 {
		t.Errorf("Release should delete all textures, %d left", len(gpu.Images))
	}
}

func TestTextureCache_SkipsUnknownKinds(t *testing.T) {
	gpu := headless.NewBackend()
	cache := model.NewTextureCache(gpu, headless.MemFiles{}, nil)

	ref, ok, err := cache.Load("textures/Material_normal.png")
	if err != nil || ok || ref != nil {
		t.Errorf("expected skip, got ref=%v ok=%v err=%v", ref, ok, err)
	}
	if len(gpu.Images) != 0 {
		t.Error("skipped image should not be uploaded")
	}
}

func TestTextureCache_Errors(t *testing.T) {
	files := headless.MemFiles{"bad_baseColor.png": []byte("not a png")}
	cache := model.NewTextureCache(headless.NewBackend(), files, nil)

	if _, _, err := cache.Load("missing_baseColor.png"); !errors.Is(err, gltf.ErrFileNotReadable) {
		t.Errorf("expected ErrFileNotReadable, got %v", err)
	}
	if _, _, err := cache.Load("bad_baseColor.png"); err == nil {
		t.Error("expected decode error")
	}
	if cache.Uploads() != 0 {
		t.Errorf("failed loads should not be cached, got %d", cache.Uploads())
	}

	gpu := headless.NewBackend()
	gpu.Fail = map[string]error{"UploadImage": errors.New("no memory")}
	cache = model.NewTextureCache(gpu, headless.MemFiles{"x_baseColor.png": pngBytes(t)}, nil)
	if _, _, err := cache.Load("x_baseColor.png"); err == nil {
		t.Error("expected upload error")
	}
}
