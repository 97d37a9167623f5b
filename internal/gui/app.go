package gui

import (
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/harmonica"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/handcloud/internal/gesture"
	"github.com/san-kum/handcloud/internal/hand"
	"github.com/san-kum/handcloud/internal/shape"
	"github.com/san-kum/handcloud/internal/sim"
	"github.com/san-kum/handcloud/internal/storage"
)

var (
	ColBg      = rl.NewColor(0, 0, 0, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColBanner  = rl.NewColor(255, 255, 255, 255)
)

const (
	bannerTime  = 2 * time.Second
	glowSize    = 32
	zoomMin     = 0.3
	zoomMax     = 4
	zoomStep    = 0.1
	springFreq  = 6.0
	springDamp  = 1.0
	spriteScale = 4 // billboard size per unit of particle size
)

// Options configures the window.
type Options struct {
	Runner  *sim.Runner
	Tracker hand.Tracker
	Store   *storage.Store
	Cue     func(shape.Template)
	Width   int
	Height  int
	FPS     int
	FOV     float64
	CameraZ float64
	Source  string
}

type App struct {
	runner  *sim.Runner
	tracker hand.Tracker
	store   *storage.Store
	source  string

	Camera  rl.Camera3D
	cameraZ float32

	// camera zoom follows zoomTarget on a spring
	spring     harmonica.Spring
	zoom       float64
	zoomVel    float64
	zoomTarget float64

	ParticleTex rl.Texture2D
	cloud       cloudCache

	banner      string
	bannerUntil time.Time

	lastMouse   rl.Vector2
	trackerDone bool
}

func initWindow(opts Options) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(opts.Width), int32(opts.Height), "handcloud")
	rl.SetTargetFPS(int32(opts.FPS))
	rl.SetExitKey(0)
}

func NewApp(opts Options) *App {
	a := &App{
		runner:  opts.Runner,
		tracker: opts.Tracker,
		store:   opts.Store,
		source:  opts.Source,
		cameraZ: float32(opts.CameraZ),
		Camera: rl.NewCamera3D(
			rl.NewVector3(0, 0, float32(opts.CameraZ)),
			rl.NewVector3(0, 0, 0),
			rl.NewVector3(0, 1, 0),
			float32(opts.FOV),
			rl.CameraPerspective,
		),
		spring:     harmonica.NewSpring(harmonica.FPS(opts.FPS), springFreq, springDamp),
		zoom:       1,
		zoomTarget: 1,
	}

	img := rl.GenImageGradientRadial(glowSize, glowSize, 0.0, rl.White, rl.NewColor(0, 0, 0, 0))
	a.ParticleTex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	a.runner.Classifier().OnSwitch(func(t shape.Template) {
		a.banner = gesture.Banner(t)
		a.bannerUntil = time.Now().Add(bannerTime)
		if opts.Cue != nil {
			opts.Cue(t)
		}
	})
	a.cloud.sync(a.runner.Loop().Store())
	return a
}

// Run opens the window and blocks until it is closed.
func Run(opts Options) {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.FOV <= 0 {
		opts.FOV = 75
	}
	if opts.CameraZ <= 0 {
		opts.CameraZ = 15
	}
	if opts.Source == "" {
		opts.Source = "mouse"
	}

	initWindow(opts)
	defer rl.CloseWindow()
	app := NewApp(opts)
	defer rl.UnloadTexture(app.ParticleTex)
	app.RunLoop()
	app.closeTracker()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	a.pollTracker()
	a.mouseHand()

	if rl.IsKeyPressed(rl.KeyO) {
		a.openSession()
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.zoomTarget = clampZoom(a.zoomTarget + float64(wheel)*zoomStep)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		a.zoomTarget = clampZoom(a.zoomTarget * 1.2)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		a.zoomTarget = clampZoom(a.zoomTarget / 1.2)
	}
	a.zoom, a.zoomVel = a.spring.Update(a.zoom, a.zoomVel, a.zoomTarget)
	a.Camera.Position.Z = a.cameraZ / float32(a.zoom)

	a.runner.Loop().Tick()
	a.cloud.sync(a.runner.Loop().Store())
}

func clampZoom(z float64) float64 {
	if z < zoomMin {
		return zoomMin
	}
	if z > zoomMax {
		return zoomMax
	}
	return z
}

func (a *App) pollTracker() {
	if a.tracker == nil || a.trackerDone {
		return
	}
	if hand.Poll(a.tracker, func(res hand.Result) { a.runner.Apply(res) }) {
		a.trackerDone = true
		log.Printf("gui: %s tracker finished", a.source)
	}
}

// mouseHand feeds a synthesized hand while the mouse is moving or a button
// is involved, so an idle mouse does not fight a live tracker.
func (a *App) mouseHand() {
	pos := rl.GetMousePosition()
	left := rl.IsMouseButtonDown(rl.MouseLeftButton)
	pinch := rl.IsMouseButtonPressed(rl.MouseRightButton)

	moved := pos != a.lastMouse
	a.lastMouse = pos
	if !moved && !left && !pinch && !rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		return
	}

	lms := hand.Pointer(float64(pos.X), float64(pos.Y),
		float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()), left, pinch)
	a.runner.Apply(hand.Result{Hands: [][]hand.Landmark{lms}, At: time.Now()})
}

func (a *App) openSession() {
	if a.store == nil {
		return
	}
	path, err := a.store.PickSession()
	if err != nil {
		log.Printf("gui: %v", err)
		return
	}
	if path == "" {
		return
	}
	meta, results, err := storage.OpenPath(path)
	if err != nil {
		log.Printf("gui: open %s: %v", path, err)
		return
	}

	a.closeTracker()
	a.tracker = hand.NewReplay(results, false)
	a.trackerDone = false
	a.source = "replay " + meta.ID
	log.Printf("gui: replaying %s (%d frames)", meta.ID, len(results))
}

func (a *App) closeTracker() {
	if a.tracker == nil {
		return
	}
	if err := a.tracker.Close(); err != nil {
		log.Printf("gui: closing tracker: %v", err)
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode3D(a.Camera)
	rl.BeginBlendMode(rl.BlendAdditive)
	a.drawCloud()
	rl.EndBlendMode()
	rl.EndMode3D()

	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) drawCloud() {
	rot := a.runner.Loop().Model()
	for i, p := range a.cloud.positions {
		v := rot.Mul4x1(p.Vec4(1))
		rl.DrawBillboard(a.Camera, a.ParticleTex,
			rl.NewVector3(v.X(), v.Y(), v.Z()), a.cloud.sizes[i]*spriteScale, a.cloud.colors[i])
	}
}

func (a *App) DrawHUD() {
	st := a.runner.Loop().State()
	rl.DrawText(st.Template.Label(), 30, 30, 20, ColText)

	source := a.source
	if a.trackerDone {
		source += " (ended)"
	}
	rl.DrawText(source, 30, 56, 14, ColTextDim)
	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 30, int32(rl.GetScreenHeight())-30, 14, ColTextDim)

	if st.Grasping {
		rl.DrawText("GRASP", 30, 76, 14, ColText)
	}

	if a.banner != "" && time.Now().Before(a.bannerUntil) {
		w := rl.MeasureText(a.banner, 28)
		x := (int32(rl.GetScreenWidth()) - w) / 2
		rl.DrawText(a.banner, x, 40, 28, ColBanner)
	}

	rl.DrawText("LMB grasp  RMB pinch  wheel zoom  O open  Q quit",
		30, int32(rl.GetScreenHeight())-52, 12, ColTextDim)
}
