package model

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltfview/pkg/gltf"
)

// ErrCyclicGraph is returned when a node is reachable from itself.
var ErrCyclicGraph = errors.New("scene graph contains a cycle")

// VisitFunc is called for every node carrying a mesh, in traversal order.
type VisitFunc func(node int, world mgl32.Mat4, mesh int) error

// LocalTransform returns a node's local matrix: its explicit matrix when
// present, otherwise T * R * S with absent parts as identity.
func LocalTransform(n *gltf.Node) mgl32.Mat4 {
	if n.HasMatrix() {
		return mgl32.Mat4(*n.Matrix)
	}

	local := mgl32.Ident4()
	if t := n.Translation; t != nil {
		local = mgl32.Translate3D(t[0], t[1], t[2])
	}
	if r := n.Rotation; r != nil {
		// Stored x, y, z, w.
		q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
		local = local.Mul4(q.Mat4())
	}
	if s := n.Scale; s != nil {
		local = local.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	}
	return local
}

type walkFrame struct {
	node   int
	parent mgl32.Mat4
	exit   bool
}

// Walk traverses the node hierarchy depth-first from root, children in
// document order, accumulating world transforms.
func Walk(doc *gltf.Document, root int, visit VisitFunc) error {
	onPath := make(map[int]bool)
	stack := []walkFrame{{node: root, parent: mgl32.Ident4()}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.exit {
			delete(onPath, f.node)
			continue
		}
		if onPath[f.node] {
			return fmt.Errorf("%w: node %d", ErrCyclicGraph, f.node)
		}

		node, err := doc.Node(f.node)
		if err != nil {
			return err
		}
		world := f.parent.Mul4(LocalTransform(node))

		if node.Mesh != nil {
			if _, err := doc.Mesh(*node.Mesh); err != nil {
				return fmt.Errorf("node %d: %w", f.node, err)
			}
			if err := visit(f.node, world, *node.Mesh); err != nil {
				return err
			}
		}

		onPath[f.node] = true
		stack = append(stack, walkFrame{node: f.node, exit: true})
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, walkFrame{node: node.Children[i], parent: world})
		}
	}
	return nil
}
