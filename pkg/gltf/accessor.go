package gltf

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Resolver turns accessor indices into typed arrays read from a blob.
type Resolver struct {
	doc  *Document
	blob *Blob
}

// NewResolver creates a resolver over doc and its loaded blob.
func NewResolver(doc *Document, blob *Blob) *Resolver {
	return &Resolver{doc: doc, blob: blob}
}

// location computes where an accessor's data starts and how far apart
// consecutive elements are. The whole range of Count elements must lie
// inside the blob.
func (r *Resolver) location(acc *Accessor, elemSize int) (offset, stride int, err error) {
	if acc.BufferView == nil {
		return 0, 0, fmt.Errorf("%w: no bufferView", ErrMalformedAccessor)
	}
	view, err := r.doc.BufferView(*acc.BufferView)
	if err != nil {
		return 0, 0, err
	}
	if view.Buffer != 0 {
		return 0, 0, fmt.Errorf("%w: bufferView %d uses buffer %d", ErrUnsupportedBuffer, *acc.BufferView, view.Buffer)
	}
	if acc.Count < 0 || acc.ByteOffset < 0 || view.ByteOffset < 0 {
		return 0, 0, fmt.Errorf("%w: negative count or offset", ErrMalformedAccessor)
	}

	stride = elemSize
	if view.ByteStride > elemSize {
		stride = view.ByteStride
	}

	size := r.blob.Len()
	if view.ByteOffset > size || acc.ByteOffset > size-view.ByteOffset {
		return 0, 0, fmt.Errorf("%w: offset %d+%d exceeds %d bytes", ErrOutOfBounds, view.ByteOffset, acc.ByteOffset, size)
	}
	offset = view.ByteOffset + acc.ByteOffset
	if acc.Count == 0 {
		return offset, stride, nil
	}

	// offset + (count-1)*stride + elemSize <= size, without overflowing.
	avail := size - offset
	if avail < elemSize || acc.Count-1 > (avail-elemSize)/stride {
		return 0, 0, fmt.Errorf("%w: %d elements of %d bytes (stride %d) at %d exceed %d bytes",
			ErrOutOfBounds, acc.Count, elemSize, stride, offset, size)
	}
	return offset, stride, nil
}

// ResolveFloats decodes a float accessor into a flat sequence of
// Count*Arity values in document order.
func (r *Resolver) ResolveFloats(index int) ([]float32, error) {
	acc, err := r.doc.Accessor(index)
	if err != nil {
		return nil, err
	}
	arity, err := acc.Arity()
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", index, err)
	}
	if acc.ComponentType != ComponentFloat {
		return nil, fmt.Errorf("accessor %d: %w: %d is not float", index, ErrUnsupportedComponentType, acc.ComponentType)
	}

	elemSize := 4 * arity
	offset, stride, err := r.location(acc, elemSize)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", index, err)
	}

	if stride == elemSize {
		out, err := r.blob.ReadFloats(offset, acc.Count*arity)
		if err != nil {
			return nil, fmt.Errorf("accessor %d: %w", index, err)
		}
		return out, nil
	}

	// Interleaved view: read one element per stride.
	out := make([]float32, 0, acc.Count*arity)
	for i := 0; i < acc.Count; i++ {
		elem, err := r.blob.ReadFloats(offset+i*stride, arity)
		if err != nil {
			return nil, fmt.Errorf("accessor %d element %d: %w", index, i, err)
		}
		out = append(out, elem...)
	}
	return out, nil
}

// ResolveIndices decodes a SCALAR index accessor into uint32 indices.
func (r *Resolver) ResolveIndices(index int) ([]uint32, error) {
	acc, err := r.doc.Accessor(index)
	if err != nil {
		return nil, err
	}
	arity, err := acc.Arity()
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", index, err)
	}
	if arity != 1 {
		return nil, fmt.Errorf("accessor %d: %w: indices must be SCALAR, got %s", index, ErrMalformedAccessor, acc.Type)
	}
	size, err := ComponentSize(acc.ComponentType)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", index, err)
	}

	offset, stride, err := r.location(acc, size)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", index, err)
	}

	if stride == size {
		out, err := r.blob.ReadIndices(offset, acc.Count, acc.ComponentType)
		if err != nil {
			return nil, fmt.Errorf("accessor %d: %w", index, err)
		}
		return out, nil
	}

	out := make([]uint32, 0, acc.Count)
	for i := 0; i < acc.Count; i++ {
		elem, err := r.blob.ReadIndices(offset+i*stride, 1, acc.ComponentType)
		if err != nil {
			return nil, fmt.Errorf("accessor %d element %d: %w", index, i, err)
		}
		out = append(out, elem[0])
	}
	return out, nil
}

// ResolveVec3 resolves a VEC3 float accessor and groups it.
func (r *Resolver) ResolveVec3(index int) ([]mgl32.Vec3, error) {
	if err := r.expectType(index, "VEC3"); err != nil {
		return nil, err
	}
	floats, err := r.ResolveFloats(index)
	if err != nil {
		return nil, err
	}
	return GroupVec3(floats)
}

// ResolveVec2 resolves a VEC2 float accessor and groups it.
func (r *Resolver) ResolveVec2(index int) ([]mgl32.Vec2, error) {
	if err := r.expectType(index, "VEC2"); err != nil {
		return nil, err
	}
	floats, err := r.ResolveFloats(index)
	if err != nil {
		return nil, err
	}
	return GroupVec2(floats)
}

func (r *Resolver) expectType(index int, want string) error {
	acc, err := r.doc.Accessor(index)
	if err != nil {
		return err
	}
	if _, err := acc.Arity(); err != nil {
		return fmt.Errorf("accessor %d: %w", index, err)
	}
	if acc.Type != want {
		return fmt.Errorf("accessor %d: %w: expected %s, got %s", index, ErrMalformedAccessor, want, acc.Type)
	}
	return nil
}

// GroupVec2 groups consecutive pairs of floats.
func GroupVec2(floats []float32) ([]mgl32.Vec2, error) {
	if len(floats)%2 != 0 {
		return nil, fmt.Errorf("%w: %d floats not divisible by 2", ErrMalformedAccessor, len(floats))
	}
	out := make([]mgl32.Vec2, len(floats)/2)
	for i := range out {
		out[i] = mgl32.Vec2{floats[i*2], floats[i*2+1]}
	}
	return out, nil
}

// GroupVec3 groups consecutive triples of floats.
func GroupVec3(floats []float32) ([]mgl32.Vec3, error) {
	if len(floats)%3 != 0 {
		return nil, fmt.Errorf("%w: %d floats not divisible by 3", ErrMalformedAccessor, len(floats))
	}
	out := make([]mgl32.Vec3, len(floats)/3)
	for i := range out {
		out[i] = mgl32.Vec3{floats[i*3], floats[i*3+1], floats[i*3+2]}
	}
	return out, nil
}

// GroupVec4 groups consecutive quadruples of floats.
func GroupVec4(floats []float32) ([]mgl32.Vec4, error) {
	if len(floats)%4 != 0 {
		return nil, fmt.Errorf("%w: %d floats not divisible by 4", ErrMalformedAccessor, len(floats))
	}
	out := make([]mgl32.Vec4, len(floats)/4)
	for i := range out {
		out[i] = mgl32.Vec4{floats[i*4], floats[i*4+1], floats[i*4+2], floats[i*4+3]}
	}
	return out, nil
}

// FlattenVec3 is the inverse of GroupVec3.
func FlattenVec3(vs []mgl32.Vec3) []float32 {
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

// FlattenVec2 is the inverse of GroupVec2.
func FlattenVec2(vs []mgl32.Vec2) []float32 {
	out := make([]float32, 0, len(vs)*2)
	for _, v := range vs {
		out = append(out, v[0], v[1])
	}
	return out
}
