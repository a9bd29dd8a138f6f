// Package shaders embeds the GLSL sources used by the viewer.
package shaders

import _ "embed"

// ModelVertex transforms interleaved model vertices by the world and camera matrices.
//
//go:embed model.vert
var ModelVertex string

// ModelFragment shades with one point light, the first diffuse texture and
// the first specular texture.
//
//go:embed model.frag
var ModelFragment string
