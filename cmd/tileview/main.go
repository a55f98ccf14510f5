package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/sirupsen/logrus"

	"tileworld/internal/config"
	"tileworld/internal/input"
	"tileworld/internal/logger"
	"tileworld/internal/profiling"
	"tileworld/internal/render/glview"
	"tileworld/internal/render/raster"
	"tileworld/internal/tiling"
	"tileworld/internal/viewer"
	"tileworld/internal/world"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("viewer stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ts, err := config.LoadTileset(cfg.Tileset.Descriptor)
	if err != nil {
		return err
	}
	atlas, err := loadAtlas(cfg.Tileset.Image, ts)
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow(cfg.Viewer)
	if err != nil {
		return err
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}
	log.WithField("gl", gl.GoStr(gl.GetString(gl.VERSION))).Info("context ready")

	r, err := glview.NewRenderer(atlas)
	if err != nil {
		return err
	}
	defer r.Dispose()

	m, err := world.NewManager(world.Options{
		Renderer:   r,
		Tileset:    ts,
		Terrain:    cfg.TerrainParams(),
		ChunkSize:  cfg.Streaming.ChunkSize,
		BaseRadius: cfg.Streaming.BaseRadius,
		CellSize:   cfg.Streaming.CellSize,
		Workers:    cfg.Streaming.Workers,
		QueueSize:  cfg.Streaming.QueueSize,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	fbw, fbh := window.GetFramebufferSize()
	cam := glview.NewCamera(fbw, fbh)
	view := config.NewViewState(cfg.Viewer)
	controls := viewer.NewControls(cfg.Viewer.PanSpeed)

	// first chunks before the window shows anything
	if _, err := m.Update(0, 0, view.Zoom()); err != nil {
		return err
	}

	in := input.NewManager()
	setupInputHandlers(window, in, cam, view)
	runLoop(window, in, m, r, cam, view, controls, viewer.NewFPSLimiter(cfg.Viewer.TargetFPS), log)
	return nil
}

func loadAtlas(path string, ts *tiling.Tileset) (*raster.Atlas, error) {
	if path == "" {
		return raster.GenerateAtlas(ts), nil
	}
	return raster.LoadAtlas(path, ts)
}

func setupWindow(v config.ViewerConfig) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(v.Width, v.Height, "tileview", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(0)
	return window, nil
}

func setupInputHandlers(window *glfw.Window, in *input.Manager, cam *glview.Camera, view *config.ViewState) {
	in.SetKeyCallback(window)

	// left button drags the map; cursor positions are in window units
	var drag viewer.Drag
	toFramebuffer := func(w *glfw.Window, x, y float64) (float64, float64) {
		ww, wh := w.GetSize()
		if ww == 0 || wh == 0 {
			return x, y
		}
		return x * float64(cam.Width) / float64(ww), y * float64(cam.Height) / float64(wh)
	}
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		switch action {
		case glfw.Press:
			cx, cy := w.GetCursorPos()
			sx, sy := toFramebuffer(w, cx, cy)
			drag.Begin(cam, sx, sy)
		case glfw.Release:
			drag.End()
		}
	})
	window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		if !drag.Active() {
			return
		}
		sx, sy := toFramebuffer(w, x, y)
		cam.Center = cam.Center.Add(drag.Move(cam, sx, sy))
	})

	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		view.ZoomBy(math.Pow(1.1, yoff))
	})

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
		cam.Width, cam.Height = width, height
	})
}

// handleCommands applies the one-shot actions of this frame.
func handleCommands(window *glfw.Window, in *input.Manager, m *world.Manager, view *config.ViewState, log logrus.FieldLogger) {
	if in.JustPressed(input.ActionReseed) {
		tc := m.TerrainConfig()
		tc.Seed = config.RandomSeed()
		if err := m.SetTerrainConfig(tc); err != nil {
			log.WithError(err).Warn("reseed failed")
		}
	}
	if in.JustPressed(input.ActionZoomIn) {
		view.ZoomBy(1.25)
	}
	if in.JustPressed(input.ActionZoomOut) {
		view.ZoomBy(0.8)
	}
	if in.JustPressed(input.ActionQuit) {
		window.SetShouldClose(true)
	}
}

func runLoop(window *glfw.Window, in *input.Manager, m *world.Manager, r *glview.Renderer, cam *glview.Camera, view *config.ViewState, controls *viewer.Controls, limiter *viewer.FPSLimiter, log logrus.FieldLogger) {
	gl.ClearColor(float32(raster.WaterColor.R)/255, float32(raster.WaterColor.G)/255, float32(raster.WaterColor.B)/255, 1)

	frames := 0
	lastTitle := time.Now()

	for !window.ShouldClose() {
		profiling.ResetFrame()
		frameStart := time.Now()

		handleCommands(window, in, m, view, log)
		in.PostUpdate()
		cam.Zoom = view.Zoom()
		step := controls.Step(in)
		cam.Pan(step.X(), step.Y())

		if _, err := m.Update(cam.Center.X(), cam.Center.Y(), cam.Zoom); err != nil {
			log.WithError(err).Error("chunk update failed")
			return
		}

		gl.Clear(gl.COLOR_BUFFER_BIT)
		r.Draw(cam)

		func() { defer profiling.Track("glfw.SwapBuffers")(); window.SwapBuffers() }()
		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
		frames++

		if time.Since(lastTitle) >= time.Second {
			focus := m.FocusChunk(cam.Center.X(), cam.Center.Y())
			window.SetTitle(fmt.Sprintf("tileview | %d fps | seed %d | chunk %s | %d resident, %d pending | world %s | %s",
				frames, m.TerrainConfig().Seed, focus, m.Len(), m.Pending(),
				profiling.FormatMs(profiling.SumWithPrefix("world.")), profiling.TopN(3)))
			log.WithFields(logrus.Fields{
				"fps":      frames,
				"resident": m.Len(),
				"frame":    profiling.FormatMs(time.Since(frameStart)),
			}).Debug("frame stats")
			frames = 0
			lastTitle = time.Now()
		}

		limiter.Wait()
	}
}
