// Package flat draws the cloud in an ebiten window with additive glow
// sprites projected through the same camera as the terminal view.
package flat

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/san-kum/handcloud/internal/gesture"
	"github.com/san-kum/handcloud/internal/hand"
	"github.com/san-kum/handcloud/internal/shape"
	"github.com/san-kum/handcloud/internal/sim"
	"github.com/san-kum/handcloud/internal/storage"
	"github.com/san-kum/handcloud/internal/viz"
)

const (
	glowSize   = 32
	glowAlpha  = 0.85
	spriteGain = 2 // sprite radius per projected particle size
	bannerTime = 2 * time.Second
)

type Options struct {
	Runner  *sim.Runner
	Tracker hand.Tracker
	Store   *storage.Store
	Camera  *viz.Camera
	Cue     func(shape.Template)
	Width   int
	Height  int
	FPS     int
	Source  string
}

type Game struct {
	runner  *sim.Runner
	tracker hand.Tracker
	store   *storage.Store
	cam     *viz.Camera
	source  string

	glow          *ebiten.Image
	width, height int

	banner      string
	bannerUntil time.Time

	lastX, lastY int
	trackerDone  bool
}

func NewGame(opts Options) *Game {
	if opts.Camera == nil {
		opts.Camera = viz.NewCamera(75, 15)
	}
	g := &Game{
		runner:  opts.Runner,
		tracker: opts.Tracker,
		store:   opts.Store,
		cam:     opts.Camera,
		source:  opts.Source,
		glow:    ebiten.NewImageFromImage(glowImage(glowSize)),
		width:   opts.Width,
		height:  opts.Height,
	}
	g.runner.Classifier().OnSwitch(func(t shape.Template) {
		g.banner = gesture.Banner(t)
		g.bannerUntil = time.Now().Add(bannerTime)
		if opts.Cue != nil {
			opts.Cue(t)
		}
	})
	return g
}

// glowImage is a white disc whose alpha falls off quadratically to zero at
// the rim.
func glowImage(n int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	c := float64(n-1) / 2
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			d := math.Hypot(float64(x)-c, float64(y)-c) / c
			a := 1 - d
			if a <= 0 {
				continue
			}
			v := uint8(a * a * 255)
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: v})
		}
	}
	return img
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if g.tracker != nil && !g.trackerDone {
		if hand.Poll(g.tracker, func(res hand.Result) { g.runner.Apply(res) }) {
			g.trackerDone = true
			log.Printf("flat: %s tracker finished", g.source)
		}
	}
	g.mouseHand()

	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		g.openSession()
	}
	if _, dy := ebiten.Wheel(); dy > 0 {
		g.cam.ZoomIn()
	} else if dy < 0 {
		g.cam.ZoomOut()
	}

	g.runner.Loop().Tick()
	return nil
}

func (g *Game) mouseHand() {
	x, y := ebiten.CursorPosition()
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	pinch := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	released := inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)

	moved := x != g.lastX || y != g.lastY
	g.lastX, g.lastY = x, y
	if !moved && !left && !pinch && !released {
		return
	}
	lms := hand.Pointer(float64(x), float64(y), float64(g.width), float64(g.height), left, pinch)
	g.runner.Apply(hand.Result{Hands: [][]hand.Landmark{lms}, At: time.Now()})
}

func (g *Game) openSession() {
	if g.store == nil {
		return
	}
	path, err := g.store.PickSession()
	if err != nil || path == "" {
		if err != nil {
			log.Printf("flat: %v", err)
		}
		return
	}
	meta, results, err := storage.OpenPath(path)
	if err != nil {
		log.Printf("flat: open %s: %v", path, err)
		return
	}
	if g.tracker != nil {
		g.tracker.Close()
	}
	g.tracker = hand.NewReplay(results, false)
	g.trackerDone = false
	g.source = "replay " + meta.ID
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	loop := g.runner.Loop()
	store := loop.Store()
	proj := g.cam.Frame(loop.Model(), g.width, g.height)

	op := &ebiten.DrawImageOptions{Blend: ebiten.BlendLighter}
	for i := 0; i < store.Len(); i++ {
		j := 3 * i
		p := mgl32.Vec3{store.Positions[j], store.Positions[j+1], store.Positions[j+2]}
		x, y, r, ok := sprite(proj, p, store.Sizes[i])
		if !ok {
			continue
		}
		op.GeoM.Reset()
		op.GeoM.Scale(float64(2*r/glowSize), float64(2*r/glowSize))
		op.GeoM.Translate(float64(x-r), float64(y-r))
		op.ColorScale.Reset()
		op.ColorScale.Scale(store.Colors[j]*glowAlpha, store.Colors[j+1]*glowAlpha, store.Colors[j+2]*glowAlpha, glowAlpha)
		screen.DrawImage(g.glow, op)
	}
	store.TakeDirty()

	g.drawHUD(screen)
}

// sprite returns the centre and radius in pixels of a particle's glow.
func sprite(proj viz.Projector, p mgl32.Vec3, size float32) (x, y, r float32, ok bool) {
	x, y, _, ok = proj.Project(p)
	if !ok {
		return 0, 0, 0, false
	}
	r = proj.Scale(p, size) * spriteGain
	if r < 1 {
		r = 1
	}
	return x, y, r, true
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	st := g.runner.Loop().State()
	source := g.source
	if g.trackerDone {
		source += " (ended)"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s\n%s\nTPS %.0f", st.Template.Label(), source, ebiten.ActualTPS()), 10, 10)
	ebitenutil.DebugPrintAt(screen, "LMB grasp  RMB pinch  wheel zoom  O open  Q quit", 10, g.height-20)

	if st.Grasping {
		vector.DrawFilledCircle(screen, float32(g.lastX), float32(g.lastY), 6, color.RGBA{255, 80, 40, 160}, true)
	}
	if g.banner != "" && time.Now().Before(g.bannerUntil) {
		ebitenutil.DebugPrintAt(screen, g.banner, g.width/2-len(g.banner)*3, 40)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it is closed.
func Run(opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Source == "" {
		opts.Source = "mouse"
	}

	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle("handcloud")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(opts.FPS)

	g := NewGame(opts)
	defer func() {
		if g.tracker != nil {
			g.tracker.Close()
		}
	}()
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
