// gltfinspect is a headless CLI for examining glTF scenes the way the viewer loads them.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faultbox/gltfview/internal/engine/headless"
	"github.com/Faultbox/gltfview/internal/engine/model"
	"github.com/Faultbox/gltfview/pkg/gltf"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "verify":
		cmdVerify(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`gltfinspect - glTF scene inspection utility

Usage:
  gltfinspect <command> <file.gltf>

Commands:
  info <file.gltf>     Load the scene without a GPU and print nodes, batches and textures
  verify <file.gltf>   Decode every mesh with an independent reader and compare

Examples:
  gltfinspect info models/scroll/scene.gltf
  gltfinspect verify models/scroll/scene.gltf`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: gltfinspect info <file.gltf>")
		os.Exit(1)
	}
	path := args[0]

	doc, err := gltf.ParseDocumentFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	gpu := headless.NewBackend()
	m, err := model.Load(path, gpu)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer m.Destroy()

	fmt.Printf("File:      %s\n", path)
	fmt.Printf("Generator: %s\n", doc.Asset.Generator)
	fmt.Printf("Nodes:     %d\n", len(doc.Nodes))
	fmt.Printf("Meshes:    %d\n", len(doc.Meshes))
	fmt.Printf("Accessors: %d\n", len(doc.Accessors))
	fmt.Printf("Images:    %d\n", len(doc.Images))
	fmt.Println()

	var vertices, triangles int
	fmt.Printf("Batches (%d):\n", len(m.Batches()))
	for i, b := range m.Batches() {
		origin := m.Transforms()[i].Col(3)
		name := b.Name
		if name == "" {
			name = fmt.Sprintf("mesh %d", b.MeshIndex)
		}
		fmt.Printf("  [%d] node %-4d %-24s %6d verts %6d tris  at (%.3f, %.3f, %.3f)\n",
			i, b.NodeIndex, name, len(b.Vertices), len(b.Indices)/3, origin[0], origin[1], origin[2])
		vertices += len(b.Vertices)
		triangles += len(b.Indices) / 3
	}
	fmt.Printf("  total %d vertices, %d triangles\n", vertices, triangles)
	fmt.Println()

	fmt.Printf("Textures (%d):\n", len(m.Textures()))
	for _, tex := range m.Textures() {
		img := gpu.Images[tex.Handle]
		rel, err := filepath.Rel(doc.Dir, tex.Path)
		if err != nil {
			rel = tex.Path
		}
		fmt.Printf("  unit %d  %-8s %4dx%-4d %s\n", tex.Unit, tex.Kind, img.Width, img.Height, rel)
	}
	fmt.Println()

	b := m.Bounds()
	if b.Empty() {
		fmt.Println("Bounds: empty")
		return
	}
	size := b.Size()
	fmt.Printf("Bounds: min (%.3f, %.3f, %.3f) max (%.3f, %.3f, %.3f) size %.3f x %.3f x %.3f\n",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2], size[0], size[1], size[2])
}

func cmdVerify(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: gltfinspect verify <file.gltf>")
		os.Exit(1)
	}

	report, err := verifyFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, mm := range report.Mismatches {
		fmt.Printf("  MISMATCH mesh %d %s: %s\n", mm.Mesh, mm.Attribute, mm.Detail)
	}
	fmt.Printf("Checked %d meshes, %d attributes: %d mismatches\n",
		report.Meshes, report.Attributes, len(report.Mismatches))
	if len(report.Mismatches) > 0 {
		os.Exit(2)
	}
}
