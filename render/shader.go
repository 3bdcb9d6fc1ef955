package render

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	ff "github.com/phanxgames/forestfire"
)

// forestFireShaderSrc is the fragment shader that maps each encoded grid
// texel to a display color. Colors are the original rendering pass's exact
// constants (rendering/mod.rs): pure red while burning, pure green for an
// unburnt tree, otherwise the background gray lerped toward a brown
// underbrush tint by underbrush density.
//
// The input texture encodes one cell per texel: R = tree (0.0/1.0), G =
// underbrush in [0,1], B = burning (0.0/1.0). src is in source-image pixel
// units (//kage:unit pixels), so imageSrc0At(src) reads the texel for the
// cell under this fragment directly, with no further coordinate math.
const forestFireShaderSrc = `//kage:unit pixels
package main

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	cell := imageSrc0At(src)
	tree := cell.r > 0.5
	underbrush := cell.g
	burning := cell.b > 0.5

	burnColor := vec3(1, 0, 0)
	treeColor := vec3(0, 1, 0)
	underbrushColor := vec3(70.0/255.0, 55.0/255.0, 44.0/255.0)
	backgroundColor := vec3(50.0/255.0, 50.0/255.0, 50.0/255.0)

	if burning {
		return vec4(burnColor, 1)
	}
	if tree {
		return vec4(treeColor, 1)
	}
	bg := mix(backgroundColor, underbrushColor, clamp(underbrush, 0, 1))
	return vec4(bg, 1)
}
`

// ensureForestFireShader lazily compiles the fragment shader. There is no
// sync.Once guard: the renderer is driven from Ebitengine's single render
// goroutine, so no concurrent compilation can race.
var forestFireShader *ebiten.Shader

func ensureForestFireShader() (*ebiten.Shader, error) {
	if forestFireShader == nil {
		s, err := ebiten.NewShader([]byte(forestFireShaderSrc))
		if err != nil {
			return nil, fmt.Errorf("forestfire: compiling rule-kernel display shader: %w: %v", ff.ErrInitialization, err)
		}
		forestFireShader = s
	}
	return forestFireShader, nil
}
