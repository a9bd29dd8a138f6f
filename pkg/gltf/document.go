// Package gltf parses glTF 2.0 scene documents and decodes accessor data
// from their binary buffer.
package gltf

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// glTF decode errors.
var (
	ErrFileNotReadable          = errors.New("file not readable")
	ErrMalformedDocument        = errors.New("malformed glTF document")
	ErrMalformedAccessor        = errors.New("malformed accessor")
	ErrInvalidAccessorType      = fmt.Errorf("%w: invalid accessor type", ErrMalformedAccessor)
	ErrUnsupportedComponentType = fmt.Errorf("%w: unsupported component type", ErrMalformedAccessor)
	ErrOutOfBounds              = errors.New("byte range out of bounds")
	ErrInvalidIndex             = errors.New("invalid document index")
	ErrUnsupportedBuffer        = errors.New("only buffers[0] is supported")
)

// Component type codes as they appear in the JSON document.
const (
	ComponentByte          = 5120
	ComponentUnsignedByte  = 5121
	ComponentShort         = 5122
	ComponentUnsignedShort = 5123
	ComponentUnsignedInt   = 5125
	ComponentFloat         = 5126
)

// Attribute semantics read from primitives.
const (
	AttrPosition  = "POSITION"
	AttrNormal    = "NORMAL"
	AttrTexCoord0 = "TEXCOORD_0"
)

// Node is one entry of the scene graph. Transform fields are nil when the
// document omits them.
type Node struct {
	Name        string       `json:"name"`
	Translation *[3]float32  `json:"translation"`
	Rotation    *[4]float32  `json:"rotation"` // x, y, z, w
	Scale       *[3]float32  `json:"scale"`
	Matrix      *[16]float32 `json:"matrix"` // column-major
	Mesh        *int         `json:"mesh"`
	Children    []int        `json:"children"`
}

// HasMatrix reports whether the node carries an explicit transform matrix.
func (n *Node) HasMatrix() bool {
	return n.Matrix != nil
}

// Primitive is one drawable part of a mesh.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices"`
	Material   *int           `json:"material"`
}

// Mesh references its primitives. Only the first one is rendered.
type Mesh struct {
	Name       string      `json:"name"`
	Primitives []Primitive `json:"primitives"`
}

// Accessor describes how to decode a typed array from a buffer view.
type Accessor struct {
	BufferView    *int   `json:"bufferView"`
	ByteOffset    int    `json:"byteOffset"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
}

// Arity returns the number of components per element for the accessor type.
func (a *Accessor) Arity() (int, error) {
	switch a.Type {
	case "SCALAR":
		return 1, nil
	case "VEC2":
		return 2, nil
	case "VEC3":
		return 3, nil
	case "VEC4":
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAccessorType, a.Type)
	}
}

// BufferView is a byte range of a buffer.
type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride"`
}

// Buffer points at the binary payload of the document.
type Buffer struct {
	URI        string `json:"uri"`
	ByteLength int    `json:"byteLength"`
}

// Image is a texture source referenced by URI.
type Image struct {
	Name     string `json:"name"`
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
}

// Scene lists root nodes.
type Scene struct {
	Name  string `json:"name"`
	Nodes []int  `json:"nodes"`
}

// Document is a parsed glTF JSON scene description.
type Document struct {
	Asset struct {
		Version   string `json:"version"`
		Generator string `json:"generator"`
	} `json:"asset"`
	Scene       *int         `json:"scene"`
	Scenes      []Scene      `json:"scenes"`
	Nodes       []Node       `json:"nodes"`
	Meshes      []Mesh       `json:"meshes"`
	Accessors   []Accessor   `json:"accessors"`
	BufferViews []BufferView `json:"bufferViews"`
	Buffers     []Buffer     `json:"buffers"`
	Images      []Image      `json:"images"`

	// Dir is the directory relative URIs are resolved against.
	Dir string `json:"-"`
}

// ParseDocument parses glTF JSON. dir is used to resolve relative URIs.
func ParseDocument(data []byte, dir string) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	doc.Dir = dir

	for i := range doc.Nodes {
		for _, c := range doc.Nodes[i].Children {
			if c < 0 || c >= len(doc.Nodes) {
				return nil, fmt.Errorf("%w: node %d child %d", ErrInvalidIndex, i, c)
			}
		}
		if m := doc.Nodes[i].Mesh; m != nil && (*m < 0 || *m >= len(doc.Meshes)) {
			return nil, fmt.Errorf("%w: node %d mesh %d", ErrInvalidIndex, i, *m)
		}
	}

	return doc, nil
}

// ParseDocumentFile reads and parses a .gltf file from disk.
func ParseDocumentFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileNotReadable, path, err)
	}
	return ParseDocument(data, filepath.Dir(path))
}

// ResolvePath returns the path of a URI relative to the document.
func (d *Document) ResolvePath(uri string) string {
	if filepath.IsAbs(uri) || d.Dir == "" {
		return uri
	}
	return filepath.Join(d.Dir, filepath.FromSlash(uri))
}

// Node returns the node at index i.
func (d *Document) Node(i int) (*Node, error) {
	if i < 0 || i >= len(d.Nodes) {
		return nil, fmt.Errorf("%w: node %d of %d", ErrInvalidIndex, i, len(d.Nodes))
	}
	return &d.Nodes[i], nil
}

// Mesh returns the mesh at index i.
func (d *Document) Mesh(i int) (*Mesh, error) {
	if i < 0 || i >= len(d.Meshes) {
		return nil, fmt.Errorf("%w: mesh %d of %d", ErrInvalidIndex, i, len(d.Meshes))
	}
	return &d.Meshes[i], nil
}

// Accessor returns the accessor at index i.
func (d *Document) Accessor(i int) (*Accessor, error) {
	if i < 0 || i >= len(d.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d of %d", ErrInvalidIndex, i, len(d.Accessors))
	}
	return &d.Accessors[i], nil
}

// BufferView returns the buffer view at index i.
func (d *Document) BufferView(i int) (*BufferView, error) {
	if i < 0 || i >= len(d.BufferViews) {
		return nil, fmt.Errorf("%w: bufferView %d of %d", ErrInvalidIndex, i, len(d.BufferViews))
	}
	return &d.BufferViews[i], nil
}

// ImagePaths returns the resolved paths of all images, in document order.
// Embedded data URIs are skipped.
func (d *Document) ImagePaths() []string {
	paths := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
			continue
		}
		paths = append(paths, d.ResolvePath(img.URI))
	}
	return paths
}

// decodeDataURI decodes a base64 data URI payload.
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 || !strings.HasSuffix(uri[:comma], ";base64") {
		return nil, fmt.Errorf("%w: unsupported data URI", ErrMalformedDocument)
	}
	data, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("%w: data URI: %v", ErrMalformedDocument, err)
	}
	return data, nil
}
