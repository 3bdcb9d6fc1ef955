package render

import (
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	ff "github.com/phanxgames/forestfire"
	"github.com/phanxgames/forestfire/engine"
	"github.com/phanxgames/forestfire/simloop"
)

// RunConfig holds optional configuration for [Run], mirroring the
// teacher's own RunConfig for ebiten.RunGame wiring.
type RunConfig struct {
	Title        string
	WindowWidth  int
	WindowHeight int
}

// Run is a convenience entry point wiring a redraw-driven [simloop.Loop]
// into an Ebitengine game loop: Ebitengine's own Update/Draw callbacks
// drive Loop.Tick and Renderer.Draw directly, a cooperative
// single-threaded embedding realized as direct calls from ebiten.Game.Update
// rather than goroutines and channels.
func Run(loop *simloop.Loop, eng *engine.Engine, cfg RunConfig) error {
	w, h := cfg.WindowWidth, cfg.WindowHeight
	if w == 0 {
		w = 640
	}
	if h == 0 {
		h = 480
	}
	ebiten.SetWindowSize(w, h)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}

	gw, gh := eng.Dimensions()
	renderer, err := NewRenderer(gw, gh)
	if err != nil {
		return err
	}
	g := &gameShell{
		loop:     loop,
		eng:      eng,
		renderer: renderer,
	}
	return ebiten.RunGame(g)
}

// gameShell implements ebiten.Game by delegating to a simloop.Loop and a
// Renderer.
type gameShell struct {
	loop     *simloop.Loop
	eng      *engine.Engine
	renderer *Renderer
}

func (g *gameShell) Update() error {
	elapsed := time.Duration(float64(time.Second) / float64(ebiten.TPS()))
	if _, err := g.loop.Tick(elapsed); err != nil {
		log.Printf("forestfire: %v", err)
		return err
	}
	return nil
}

func (g *gameShell) Draw(screen *ebiten.Image) {
	buf := g.eng.CurrentBuffer()
	g.renderer.Draw(screen, buf.Cells)
}

func (g *gameShell) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// EbitenSurface adapts a gameShell's window to forestfire.PresentationSurface.
// Under Ebitengine's model the engine itself owns frame acquisition and
// presentation (it calls Draw once per vsync with an already-acquired
// screen image), so AcquireFrame/Present/RequestRedraw are no-ops and
// Configure only records the size CurrentSize reports: the
// interface exists for hosts that drive their own surface, not for the
// Ebitengine-backed demo, which is documented here rather than silently
// deviating from the contract.
type EbitenSurface struct {
	Width, Height int
}

var _ ff.PresentationSurface = (*EbitenSurface)(nil)

func (s *EbitenSurface) CurrentSize() (int, int) { return s.Width, s.Height }

func (s *EbitenSurface) AcquireFrame() (ff.Frame, error) { return nil, nil }

func (s *EbitenSurface) Present(ff.Frame) error { return nil }

func (s *EbitenSurface) Configure(width, height int) error {
	s.Width, s.Height = width, height
	return nil
}

func (s *EbitenSurface) RequestRedraw() {}
