package gltf

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Blob is the binary payload referenced by buffers[0]. It is read-only.
type Blob struct {
	data []byte
}

// NewBlob wraps data without copying it.
func NewBlob(data []byte) *Blob {
	return &Blob{data: data}
}

// Len returns the blob size in bytes.
func (b *Blob) Len() int {
	return len(b.data)
}

// ComponentSize returns the byte size of an index component type.
func ComponentSize(componentType int) (int, error) {
	switch componentType {
	case ComponentByte, ComponentUnsignedByte:
		return 1, nil
	case ComponentShort, ComponentUnsignedShort:
		return 2, nil
	case ComponentUnsignedInt, ComponentFloat:
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedComponentType, componentType)
	}
}

// span returns data[offset:offset+length] or ErrOutOfBounds.
func (b *Blob) span(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset > len(b.data) || length > len(b.data)-offset {
		return nil, fmt.Errorf("%w: [%d, %d) exceeds %d bytes", ErrOutOfBounds, offset, offset+length, len(b.data))
	}
	return b.data[offset : offset+length], nil
}

// checkCount rejects counts whose byte length cannot fit in the blob, before
// count*size is computed.
func (b *Blob) checkCount(byteOffset, count, size int) error {
	if count < 0 || count > len(b.data)/size {
		return fmt.Errorf("%w: %d elements of %d bytes at %d exceed %d bytes", ErrOutOfBounds, count, size, byteOffset, len(b.data))
	}
	return nil
}

// ReadFloats decodes count little-endian IEEE-754 float32 values at byteOffset.
func (b *Blob) ReadFloats(byteOffset, count int) ([]float32, error) {
	if err := b.checkCount(byteOffset, count, 4); err != nil {
		return nil, err
	}
	raw, err := b.span(byteOffset, count*4)
	if err != nil {
		return nil, err
	}
	out := make([]float32, count)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

// ReadIndices decodes count indices of componentType at byteOffset and
// promotes them to uint32. Signed shorts are sign-extended, so negative
// values wrap to large indices.
func (b *Blob) ReadIndices(byteOffset, count, componentType int) ([]uint32, error) {
	size, err := ComponentSize(componentType)
	if err != nil {
		return nil, err
	}
	if componentType == ComponentFloat || componentType == ComponentByte {
		return nil, fmt.Errorf("%w: %d is not an index type", ErrUnsupportedComponentType, componentType)
	}

	if err := b.checkCount(byteOffset, count, size); err != nil {
		return nil, err
	}
	raw, err := b.span(byteOffset, count*size)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, count)
	switch componentType {
	case ComponentUnsignedInt:
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}
	case ComponentUnsignedShort:
		for i := range out {
			out[i] = uint32(binary.LittleEndian.Uint16(raw[i*2:]))
		}
	case ComponentShort:
		for i := range out {
			out[i] = uint32(int16(binary.LittleEndian.Uint16(raw[i*2:])))
		}
	case ComponentUnsignedByte:
		for i := range out {
			out[i] = uint32(raw[i])
		}
	}
	return out, nil
}

// LoadBlob loads buffers[0] of the document. External URIs are resolved
// against the document directory and read with readFile; base64 data URIs
// are decoded in place.
func (d *Document) LoadBlob(readFile func(path string) ([]byte, error)) (*Blob, error) {
	if len(d.Buffers) == 0 {
		return nil, fmt.Errorf("%w: no buffers", ErrMalformedDocument)
	}
	uri := d.Buffers[0].URI
	if uri == "" {
		return nil, fmt.Errorf("%w: buffers[0] has no uri", ErrMalformedDocument)
	}

	if strings.HasPrefix(uri, "data:") {
		data, err := decodeDataURI(uri)
		if err != nil {
			return nil, err
		}
		return NewBlob(data), nil
	}

	path := d.ResolvePath(uri)
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileNotReadable, path, err)
	}
	return NewBlob(data), nil
}
