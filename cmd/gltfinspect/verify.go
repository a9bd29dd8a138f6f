package main

import (
	"fmt"
	"os"

	qgltf "github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/gltfview/pkg/gltf"
)

// mismatch is one attribute where the two decoders disagree.
type mismatch struct {
	Mesh      int
	Attribute string
	Detail    string
}

type verifyReport struct {
	Meshes     int
	Attributes int
	Mismatches []mismatch
}

// verifyFile decodes primitive 0 of every mesh with both our resolver and
// qmuntal/gltf's modeler and reports every difference.
func verifyFile(path string) (*verifyReport, error) {
	doc, err := gltf.ParseDocumentFile(path)
	if err != nil {
		return nil, err
	}
	blob, err := doc.LoadBlob(os.ReadFile)
	if err != nil {
		return nil, err
	}
	resolver := gltf.NewResolver(doc, blob)

	ref, err := qgltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reference reader: %w", err)
	}
	if len(ref.Meshes) != len(doc.Meshes) {
		return nil, fmt.Errorf("mesh count differs: %d vs %d", len(doc.Meshes), len(ref.Meshes))
	}

	report := &verifyReport{}
	for i, mesh := range doc.Meshes {
		if len(mesh.Primitives) == 0 || len(ref.Meshes[i].Primitives) == 0 {
			continue
		}
		report.Meshes++
		prim := mesh.Primitives[0]
		refPrim := ref.Meshes[i].Primitives[0]

		add := func(attr, detail string) {
			report.Mismatches = append(report.Mismatches, mismatch{Mesh: i, Attribute: attr, Detail: detail})
		}

		if idx, ok := prim.Attributes[gltf.AttrPosition]; ok {
			report.Attributes++
			ours, err := resolver.ResolveVec3(idx)
			if err != nil {
				add(gltf.AttrPosition, err.Error())
			} else {
				theirs, err := modeler.ReadPosition(ref, ref.Accessors[refPrim.Attributes[qgltf.POSITION]], nil)
				if d := compareVec3(ours, theirs, err); d != "" {
					add(gltf.AttrPosition, d)
				}
			}
		}

		if idx, ok := prim.Attributes[gltf.AttrNormal]; ok {
			report.Attributes++
			ours, err := resolver.ResolveVec3(idx)
			if err != nil {
				add(gltf.AttrNormal, err.Error())
			} else {
				theirs, err := modeler.ReadNormal(ref, ref.Accessors[refPrim.Attributes[qgltf.NORMAL]], nil)
				if d := compareVec3(ours, theirs, err); d != "" {
					add(gltf.AttrNormal, d)
				}
			}
		}

		if idx, ok := prim.Attributes[gltf.AttrTexCoord0]; ok {
			report.Attributes++
			ours, err := resolver.ResolveVec2(idx)
			if err != nil {
				add(gltf.AttrTexCoord0, err.Error())
			} else {
				theirs, err := modeler.ReadTextureCoord(ref, ref.Accessors[refPrim.Attributes[qgltf.TEXCOORD_0]], nil)
				if d := compareVec2(ours, theirs, err); d != "" {
					add(gltf.AttrTexCoord0, d)
				}
			}
		}

		if prim.Indices != nil && refPrim.Indices != nil {
			report.Attributes++
			ours, err := resolver.ResolveIndices(*prim.Indices)
			if err != nil {
				add("indices", err.Error())
			} else {
				theirs, err := modeler.ReadIndices(ref, ref.Accessors[*refPrim.Indices], nil)
				if d := compareIndices(ours, theirs, err); d != "" {
					add("indices", d)
				}
			}
		}
	}
	return report, nil
}

func compareVec3[V ~[3]float32](ours []V, theirs [][3]float32, err error) string {
	if err != nil {
		return "reference: " + err.Error()
	}
	if len(ours) != len(theirs) {
		return fmt.Sprintf("%d elements vs %d", len(ours), len(theirs))
	}
	for i := range ours {
		if [3]float32(ours[i]) != theirs[i] {
			return fmt.Sprintf("element %d: %v vs %v", i, ours[i], theirs[i])
		}
	}
	return ""
}

func compareVec2[V ~[2]float32](ours []V, theirs [][2]float32, err error) string {
	if err != nil {
		return "reference: " + err.Error()
	}
	if len(ours) != len(theirs) {
		return fmt.Sprintf("%d elements vs %d", len(ours), len(theirs))
	}
	for i := range ours {
		if [2]float32(ours[i]) != theirs[i] {
			return fmt.Sprintf("element %d: %v vs %v", i, ours[i], theirs[i])
		}
	}
	return ""
}

func compareIndices(ours, theirs []uint32, err error) string {
	if err != nil {
		return "reference: " + err.Error()
	}
	if len(ours) != len(theirs) {
		return fmt.Sprintf("%d indices vs %d", len(ours), len(theirs))
	}
	for i := range ours {
		if ours[i] != theirs[i] {
			return fmt.Sprintf("index %d: %d vs %d", i, ours[i], theirs[i])
		}
	}
	return ""
}
