package model

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/gltfview/internal/engine/texture"
	"github.com/Faultbox/gltfview/pkg/gltf"
)

// KindForPath maps an image path to its texture kind by file name convention.
// Only the file name is matched, never the directories above it. Paths that
// match neither convention are not textures this viewer uses.
func KindForPath(path string) (TextureKind, bool) {
	name := filepath.Base(path)
	switch {
	case strings.Contains(name, "baseColor"):
		return TextureDiffuse, true
	case strings.Contains(name, "metallicRoughness"):
		return TextureSpecular, true
	default:
		return 0, false
	}
}

// TextureCache uploads each image path at most once and hands out shared refs.
type TextureCache struct {
	gpu   Textures
	files FileReader
	log   *zap.Logger

	refs  map[string]*TextureRef
	order []*TextureRef
}

// NewTextureCache creates an empty cache uploading through gpu.
func NewTextureCache(gpu Textures, files FileReader, log *zap.Logger) *TextureCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &TextureCache{
		gpu:   gpu,
		files: files,
		log:   log,
		refs:  make(map[string]*TextureRef),
	}
}

// Load returns the texture for path, uploading it on first use.
// ok is false when the path is not a recognized texture kind.
func (c *TextureCache) Load(path string) (ref *TextureRef, ok bool, err error) {
	if ref, found := c.refs[path]; found {
		c.log.Debug("texture cache hit", zap.String("path", path))
		return ref, true, nil
	}

	kind, ok := KindForPath(path)
	if !ok {
		c.log.Debug("skipping image", zap.String("path", path))
		return nil, false, nil
	}

	data, err := c.files.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", gltf.ErrFileNotReadable, path, err)
	}
	img, err := texture.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("texture %s: %w", path, err)
	}

	handle, err := c.gpu.UploadImage(img.Pix, img.Width, img.Height, img.Channels)
	if err != nil {
		return nil, false, fmt.Errorf("upload texture %s: %w", path, err)
	}

	ref = &TextureRef{
		Handle: handle,
		Kind:   kind,
		Unit:   uint32(len(c.order)),
		Path:   path,
	}
	c.refs[path] = ref
	c.order = append(c.order, ref)

	c.log.Debug("texture uploaded",
		zap.String("path", path),
		zap.Stringer("kind", kind),
		zap.Uint32("unit", ref.Unit),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height))
	return ref, true, nil
}

// Uploads returns the number of unique textures uploaded.
func (c *TextureCache) Uploads() int {
	return len(c.order)
}

// Refs returns the cached textures in upload order.
func (c *TextureCache) Refs() []*TextureRef {
	return c.order
}

// Release deletes every uploaded texture and empties the cache.
func (c *TextureCache) Release() {
	for _, ref := range c.order {
		c.gpu.DeleteTexture(ref.Handle)
	}
	c.refs = make(map[string]*TextureRef)
	c.order = nil
}
