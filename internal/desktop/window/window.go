// Package window runs a game session in an ebiten window.
package window

import (
	"errors"
	"image/color"

	"sketch-guess/internal/desktop"
	"sketch-guess/internal/game"
	"sketch-guess/internal/surface"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
)

const (
	panelHeight  = 72
	lineHeight   = 16
	ScreenWidth  = surface.Width
	ScreenHeight = surface.Height + panelHeight
	WindowTitle  = "Sketch Guess"
)

var (
	colPanel   = color.RGBA{0x2b, 0x2b, 0x2b, 0xff}
	colOverlay = color.RGBA{0x28, 0xa0, 0x50, 0xc0}
)

// Game adapts a session to ebiten's update/draw loop.
type Game struct {
	session *game.Session
	hud     *desktop.HUD
	tracker *desktop.Tracker
	canvas  *ebiten.Image
	log     zerolog.Logger
}

func New(session *game.Session, hud *desktop.HUD, log zerolog.Logger) *Game {
	return &Game{
		session: session,
		hud:     hud,
		tracker: desktop.NewTracker(surface.Width, surface.Height),
		canvas:  ebiten.NewImage(surface.Width, surface.Height),
		log:     log,
	}
}

// Run opens the window and blocks until it is closed.
func Run(g *Game) error {
	ebiten.SetWindowSize(ScreenWidth*2, ScreenHeight*2)
	ebiten.SetWindowTitle(WindowTitle)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.session.Clear()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.session.Skip()
	}

	x, y := ebiten.CursorPosition()
	in := desktop.Input{
		X:            float64(x),
		Y:            float64(y - panelHeight),
		Held:         ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		JustPressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		JustReleased: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
	}
	for _, ev := range g.tracker.Step(in) {
		if err := g.session.Pointer(ev); err != nil {
			g.log.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("pointer event rejected")
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colPanel)
	for i, line := range g.hud.Lines() {
		ebitenutil.DebugPrintAt(screen, line, 8, 4+i*lineHeight)
	}

	g.canvas.WritePixels(g.session.DisplayImage().Pix)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(0, panelHeight)
	screen.DrawImage(g.canvas, op)

	if g.hud.Overlay() {
		vector.DrawFilledRect(screen, 0, panelHeight, surface.Width, surface.Height, colOverlay, false)
		ebitenutil.DebugPrintAt(screen, "Correct!", surface.Width/2-24, panelHeight+surface.Height/2-8)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}
