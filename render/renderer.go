// Package render draws the engine's current cell buffer to an Ebitengine
// surface: a Kage fragment shader over a packed cell texture, one texel
// per cell, drawn straight to the destination image.
package render

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	ff "github.com/phanxgames/forestfire"
)

// CellTexture packs a grid's cells into an *ebiten.Image, one texel per
// cell: R = tree, G = underbrush, B = burning. Re-encoded every frame from
// whatever buffer the stepping engine currently designates as current.
type CellTexture struct {
	img           *ebiten.Image
	width, height int
	pix           []byte // persistent buffer, avoids a per-frame allocation
}

// NewCellTexture allocates a width x height staging texture.
func NewCellTexture(width, height int) *CellTexture {
	return &CellTexture{
		img:    ebiten.NewImageWithOptions(image.Rect(0, 0, width, height), &ebiten.NewImageOptions{Unmanaged: true}),
		width:  width,
		height: height,
		pix:    make([]byte, width*height*4),
	}
}

// Update re-encodes cells (row-major, width*height long) into the texture.
func (t *CellTexture) Update(cells []ff.Cell) {
	for i, c := range cells {
		off := i * 4
		if c.Tree {
			t.pix[off+0] = 255
		} else {
			t.pix[off+0] = 0
		}
		t.pix[off+1] = byte(clamp01(c.Underbrush) * 255)
		if c.Burn.Burning {
			t.pix[off+2] = 255
		} else {
			t.pix[off+2] = 0
		}
		t.pix[off+3] = 255
	}
	t.img.WritePixels(t.pix)
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Renderer draws a [CellTexture] to a destination image with the
// forest-fire display shader, via a single oversized fullscreen triangle
// and Ebitengine's DrawTrianglesShader — the closest analogue available to
// a vertex-buffer-less, index-buffer-less draw call in a library with no
// compute shaders. One `forestfire.PresentationSurface` wrinkle: under
// Ebitengine's model, ebiten.Game.Draw(screen) already represents an
// acquired frame, so AcquireFrame/Present are no-ops and Configure only
// records a size (see [EbitenSurface]) rather than real operations.
type Renderer struct {
	tex      *CellTexture
	vertices [3]ebiten.Vertex
	indices  [3]uint16
	op       ebiten.DrawTrianglesShaderOptions
}

// NewRenderer constructs a Renderer over a width x height grid. Returns
// ff.ErrInitialization if the display shader fails to compile.
func NewRenderer(width, height int) (*Renderer, error) {
	if _, err := ensureForestFireShader(); err != nil {
		return nil, err
	}
	r := &Renderer{
		tex:     NewCellTexture(width, height),
		indices: [3]uint16{0, 1, 2},
	}
	return r, nil
}

// Draw repacks cells into the staging texture and draws it to dst, scaled
// to dst's current bounds with nearest-neighbor sampling (a pixel-art
// cellular automaton, not a photograph, should not blur on upscale).
func (r *Renderer) Draw(dst *ebiten.Image, cells []ff.Cell) {
	r.tex.Update(cells)

	bounds := dst.Bounds()
	dw, dh := float32(bounds.Dx()), float32(bounds.Dy())
	sw, sh := float32(r.tex.width), float32(r.tex.height)

	// A single triangle twice the size of the destination, covering it
	// entirely once clipped — the standard fullscreen-triangle trick,
	// avoiding the seam a two-triangle quad would need down its diagonal.
	// Source coordinates are scaled by the same 2x factor so imageSrc0At
	// in the shader (unit pixels) samples the cell grid, not the screen.
	r.vertices[0] = ebiten.Vertex{DstX: 0, DstY: 0, SrcX: 0, SrcY: 0}
	r.vertices[1] = ebiten.Vertex{DstX: dw * 2, DstY: 0, SrcX: sw * 2, SrcY: 0}
	r.vertices[2] = ebiten.Vertex{DstX: 0, DstY: dh * 2, SrcX: 0, SrcY: sh * 2}
	for i := range r.vertices {
		r.vertices[i].ColorR, r.vertices[i].ColorG, r.vertices[i].ColorB, r.vertices[i].ColorA = 1, 1, 1, 1
	}

	shader, _ := ensureForestFireShader() // already compiled in NewRenderer
	r.op.Images[0] = r.tex.img
	dst.DrawTrianglesShader(r.vertices[:], r.indices[:], shader, &r.op)
}
