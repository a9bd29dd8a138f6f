// Package viewer runs the interactive model viewer: window, GL state,
// camera and the per-frame loop.
package viewer

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/gltfview/internal/config"
	"github.com/Faultbox/gltfview/internal/engine/camera"
	"github.com/Faultbox/gltfview/internal/engine/debug"
	"github.com/Faultbox/gltfview/internal/engine/input"
	"github.com/Faultbox/gltfview/internal/engine/model"
	"github.com/Faultbox/gltfview/internal/engine/renderer"
	"github.com/Faultbox/gltfview/internal/engine/shader"
	"github.com/Faultbox/gltfview/internal/engine/window"
	"github.com/Faultbox/gltfview/internal/logger"
	"github.com/Faultbox/gltfview/internal/viewer/shaders"
)

// ErrNoModel is returned when no model path was configured.
var ErrNoModel = errors.New("no model path given")

// Viewer owns the window, GL resources and the loaded model.
type Viewer struct {
	cfg      *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	program  *shader.Program
	camera   *camera.FlyCamera
	model    *model.Model
	shots    *debug.ScreenshotCapture
	wireOn   bool
}

// New opens the window, compiles shaders and loads the configured model.
// Everything created so far is released if a step fails.
func New(cfg *config.Config) (*Viewer, error) {
	if cfg.Model.Path == "" {
		return nil, ErrNoModel
	}

	logger.Info("initializing viewer",
		zap.String("model", cfg.Model.Path),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	v := &Viewer{
		cfg:    cfg,
		shots:  debug.NewScreenshotCapture(cfg.Render.ScreenshotDir, "gltfview"),
		wireOn: cfg.Render.Wireframe,
	}
	ok := false
	defer func() {
		if !ok {
			v.Close()
		}
	}()

	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		HighDPI:    cfg.Window.HighDPI,
		DepthBits:  cfg.Window.DepthBits,
		Samples:    cfg.Window.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:       width,
		Height:      height,
		ClearColor:  mgl32.Vec4(cfg.Render.ClearColor),
		Wireframe:   cfg.Render.Wireframe,
		Multisample: v.window.Multisampled(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.program, err = shader.NewProgram(shaders.ModelVertex, shaders.ModelFragment)
	if err != nil {
		return nil, fmt.Errorf("failed to compile model shader: %w", err)
	}

	v.model, err = model.Load(cfg.Model.Path, v.renderer,
		model.WithLogger(logger.Named("model")),
		model.WithRoot(cfg.Model.RootNode),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	v.camera = newCamera(cfg.Camera, width, height)
	if cfg.Camera.FitToModel && !v.model.Bounds().Empty() {
		b := v.model.Bounds()
		v.camera.FitToBounds(b.Min, b.Max)
	}

	v.setSceneUniforms()
	v.input = input.New()

	logger.Info("viewer initialized",
		zap.Int("batches", len(v.model.Batches())),
		zap.Int("textures", len(v.model.Textures())),
	)
	ok = true
	return v, nil
}

func newCamera(cfg config.CameraConfig, width, height int) *camera.FlyCamera {
	c := camera.NewFlyCamera(width, height, mgl32.Vec3(cfg.Position))
	c.FOV = cfg.FOVDeg
	c.Near = cfg.Near
	c.Far = cfg.Far
	c.Speed = cfg.Speed
	c.SprintSpeed = cfg.SprintSpeed
	c.Sensitivity = cfg.Sensitivity
	return c
}

// setSceneUniforms sets the uniforms that stay constant for the whole run.
func (v *Viewer) setSceneUniforms() {
	var hasDiffuse, hasSpecular int32
	for _, tex := range v.model.Textures() {
		switch tex.Kind {
		case model.TextureDiffuse:
			hasDiffuse = 1
		case model.TextureSpecular:
			hasSpecular = 1
		}
	}

	v.program.Activate()
	v.program.SetUniformVec4("lightColor", mgl32.Vec4(v.cfg.Light.Color))
	v.program.SetUniformVec3("lightPos", mgl32.Vec3(v.cfg.Light.Position))
	v.program.SetUniformInt("hasDiffuse", hasDiffuse)
	v.program.SetUniformInt("hasSpecular", hasSpecular)
}

// Run runs the frame loop until the window is closed or Escape is pressed.
// F1 toggles wireframe and F12 saves a screenshot.
func (v *Viewer) Run() error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting render loop")

	for v.running {
		if v.input.Update() {
			v.running = false
			break
		}

		for _, event := range v.input.Events() {
			if event.Type == input.EventWindowResize {
				v.resize()
			}
		}

		if v.input.IsKeyPressed(sdl.SCANCODE_F1) {
			v.wireOn = !v.wireOn
			v.renderer.Wireframe(v.wireOn)
		}

		v.camera.Inputs(v.input.Controls())
		v.camera.UpdateMatrix()

		v.renderer.Begin()
		v.model.Draw(v.program, v.camera)
		if v.input.IsKeyPressed(sdl.SCANCODE_F12) {
			v.screenshot()
		}
		v.window.SwapBuffers()

		frameCount++
		if elapsed := time.Since(fpsTimer); elapsed >= time.Second {
			fps := float64(frameCount) / elapsed.Seconds()
			v.window.SetTitle(fmt.Sprintf("%s - %.0f fps", v.cfg.Window.Title, fps))
			logger.Debug("fps", zap.Float64("fps", fps))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// screenshot saves the back buffer before it is swapped.
func (v *Viewer) screenshot() {
	pixels, width, height := v.renderer.ReadPixels()
	path, err := v.shots.CaptureFromPixels(pixels, width, height)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

func (v *Viewer) resize() {
	width, height := v.window.DrawableSize()
	v.renderer.Resize(width, height)
	v.camera.SetViewport(width, height)
}

// Close releases the model, shader and window in reverse creation order.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.model != nil {
		v.model.Destroy()
	}
	if v.program != nil {
		v.program.Delete()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
