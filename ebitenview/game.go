// Package ebitenview shows a sunburst.Viewer in an ebiten window.
//
// The background renderer produces plain images; the game uploads each new
// front image once and draws the selection, hover, tooltip and context
// menu on top every frame.
package ebitenview

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/sunburst"
)

// RunConfig holds window settings for Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// ShowFPS draws frame rate and pass statistics in the corner.
	ShowFPS bool
	// ExitOnScriptDone ends the game once an attached script finishes.
	ExitOnScriptDone bool
	// Update, if set, runs at the start of every tick on the game thread,
	// which is where the viewer may be mutated. A non-nil error ends the
	// game.
	Update func() error
}

// menu is an open context menu of node actions.
type menu struct {
	x, y    int
	actions []sunburst.Action
}

// Game implements ebiten.Game for a viewer.
type Game struct {
	viewer *sunburst.Viewer
	cfg    RunConfig

	front    image.Image
	frontImg *ebiten.Image
	overlay  *Surface

	menu    *menu
	status  string
	tooltip string
	cx, cy  int

	lastErr   atomic.Pointer[string]
	repaints  atomic.Int64
	statsText string
	statsAge  float64

	w, h int
}

// NewGame wraps v. The game becomes the scheduler host.
func NewGame(v *sunburst.Viewer, cfg RunConfig) *Game {
	g := &Game{viewer: v, cfg: cfg}
	v.SetHost(g)
	v.OnActions(func(ev sunburst.Event, actions []sunburst.Action) {
		if len(actions) == 0 {
			g.menu = nil
			return
		}
		g.menu = &menu{x: int(ev.X), y: int(ev.Y), actions: actions}
	})
	return g
}

// PassStarted implements sunburst.Host.
func (g *Game) PassStarted(sunburst.Fidelity, bool) {}

// PassFinished implements sunburst.Host.
func (g *Game) PassFinished(f sunburst.Fidelity, cost time.Duration, err error) {
	if err != nil {
		msg := fmt.Sprintf("%s pass failed: %v", f, err)
		g.lastErr.Store(&msg)
		return
	}
	g.lastErr.Store(nil)
}

// Repaint implements sunburst.Host. ebiten redraws every frame, so this
// only counts requests.
func (g *Game) Repaint() { g.repaints.Add(1) }

// Update implements ebiten.Game.
func (g *Game) Update() error {
	v := g.viewer
	dt := 1.0 / float64(ebiten.TPS())

	if g.cfg.ExitOnScriptDone {
		if s := v.Script(); s != nil && s.Done() {
			return ebiten.Termination
		}
	}

	if g.cfg.Update != nil {
		if err := g.cfg.Update(); err != nil {
			return err
		}
	}

	g.cx, g.cy = ebiten.CursorPosition()
	g.handleKeys()

	if v.Script() == nil && g.menu == nil {
		left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
		right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
		button := sunburst.MouseButtonLeft
		if right && !left {
			button = sunburst.MouseButtonRight
		}
		v.ProcessPointer(float64(g.cx), float64(g.cy), left || right, button)
	}

	v.Update(dt)

	g.tooltip = ""
	if g.menu == nil {
		if tip, ok := v.Tooltip(float64(g.cx), float64(g.cy)); ok {
			g.tooltip = tip
		}
	}

	g.statsAge += dt
	if g.statsAge >= 0.5 {
		g.statsAge = 0
		g.statsText = g.formatStats()
	}
	return nil
}

func (g *Game) handleKeys() {
	nav := g.viewer.Navigator()
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if g.menu != nil {
			g.menu = nil
		} else {
			nav.Deselect()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		nav.Recenter()
	}
	if g.menu != nil {
		for i, a := range g.menu.actions {
			if i >= 9 {
				break
			}
			if inpututil.IsKeyJustPressed(ebiten.Key1 + ebiten.Key(i)) {
				if err := a.Run(); err != nil {
					g.status = fmt.Sprintf("%s: %v", a.Name, err)
					log.Printf("ebitenview: action %q: %v", a.Name, err)
				} else {
					g.status = a.Name
				}
				g.menu = nil
				break
			}
		}
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.menu = nil
		}
	}
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	pal := g.viewer.Palette()
	screen.Fill(pal.Background.RGBA())

	if img := g.viewer.Paint(); img != nil {
		if img != g.front {
			if g.frontImg != nil {
				g.frontImg.Deallocate()
			}
			g.front = img
			g.frontImg = ebiten.NewImageFromImage(img)
		}
		screen.DrawImage(g.frontImg, nil)
	}

	if g.overlay == nil {
		g.overlay = NewSurface(screen)
	}
	g.overlay.Reset(screen)
	g.viewer.DrawOverlay(g.overlay)

	st := g.viewer.Scheduler().State()
	y := 0
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrintAt(screen, g.statsText, 0, y)
		y += 2 * glyphH
	}
	if st.Pending {
		pct := g.viewer.Scheduler().Progress().Fraction() * 100
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("rendering %.0f%%", pct), 0, y)
		y += glyphH
	}
	if msg := g.lastErr.Load(); msg != nil {
		ebitenutil.DebugPrintAt(screen, *msg, 0, y)
		y += glyphH
	}
	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, 0, g.h-glyphH)
	}

	switch {
	case g.menu != nil:
		lines := make([]string, 0, len(g.menu.actions))
		for i, a := range g.menu.actions {
			if i >= 9 {
				break
			}
			lines = append(lines, fmt.Sprintf("%d %s", i+1, a.Name))
		}
		g.drawBox(screen, strings.Join(lines, "\n"), g.menu.x, g.menu.y)
	case g.tooltip != "":
		g.drawBox(screen, g.tooltip, g.cx+12, g.cy+12)
	}
}

// drawBox prints text on a translucent box, kept inside the window.
func (g *Game) drawBox(screen *ebiten.Image, text string, x, y int) {
	lines := strings.Split(text, "\n")
	w := 0
	for _, l := range lines {
		w = max(w, len([]rune(l)))
	}
	bw, bh := w*glyphW+8, len(lines)*glyphH+4
	x = max(min(x, g.w-bw), 0)
	y = max(min(y, g.h-bh), 0)
	box := screen.SubImage(image.Rect(x, y, x+bw, y+bh)).(*ebiten.Image)
	box.Fill(color.RGBA{0, 0, 0, 180})
	ebitenutil.DebugPrintAt(screen, text, x+4, y+2)
}

func (g *Game) formatStats() string {
	st := g.viewer.Scheduler().Stats()
	return fmt.Sprintf("FPS: %.1f  TPS: %.1f\npass: %s avg, %s p95 (%d)",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		st.Mean.Round(time.Millisecond), st.P95.Round(time.Millisecond), st.Count)
}

// Layout implements ebiten.Game. The viewer is re-laid out when the window
// size changes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.viewer.Resize(float64(g.w), float64(g.h))
	}
	return g.w, g.h
}

// Run opens a window showing v and blocks until it closes. The viewer is
// closed before Run returns.
func Run(v *sunburst.Viewer, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Height <= 0 {
		cfg.Height = 800
	}
	if cfg.Title == "" {
		cfg.Title = "sunburst"
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := NewGame(v, cfg)
	defer v.Close()
	return ebiten.RunGame(g)
}
