// Package gjuliaaux contains auxiliary helpers to render and view fractal formulas.
// Applications may vary widely so users are encouraged to write their own rendering functions.
package gjuliaaux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/soypat/gjulia"
	"github.com/soypat/gjulia/glbuild"
	"github.com/soypat/gjulia/glbuild/glsllib"
	"github.com/soypat/gjulia/gleval"
	"github.com/soypat/gjulia/glrender"
)

type RenderConfig struct {
	// Width and Height of the image in pixels.
	Width, Height int
	// Zoom and Offset of the viewport. The aspect ratio is Width/Height.
	Zoom   float32
	Offset [2]float32
	// Iterations and EscapeRadius2 are the fractal's iteration parameters. Zero values use defaults.
	Iterations    int
	EscapeRadius2 float32
	// ColorConversion maps escape progress to color. If nil [ColorConversionViridis] is used.
	ColorConversion func(float32) color.Color
	// Label is drawn at the bottom left corner when not empty.
	Label       string
	LabelConfig LabelConfig
	UseGPU      bool
	Silent      bool
	// EnableCaching uses [gleval.CachedFractal] to omit evaluations of repeated points.
	EnableCaching bool
}

func (cfg *RenderConfig) fractalConfig() gleval.Config {
	fcfg := gleval.DefaultConfig()
	if cfg.Iterations != 0 {
		fcfg.Iterations = cfg.Iterations
	}
	if cfg.EscapeRadius2 != 0 {
		fcfg.EscapeRadius2 = cfg.EscapeRadius2
	}
	return fcfg
}

// Viewport returns the viewport described by the configuration.
func (cfg *RenderConfig) Viewport() glrender.Viewport {
	vp := glrender.DefaultViewport(float32(cfg.Width) / float32(cfg.Height))
	vp.Zoom = cfg.Zoom
	vp.Offset.X = cfg.Offset[0]
	vp.Offset.Y = cfg.Offset[1]
	return vp
}

// RenderImage renders the formula's fractal into a new image.
func RenderImage(f *gjulia.Formula, cfg RenderConfig) (*image.RGBA, error) {
	if f == nil {
		return nil, errors.New("nil formula")
	} else if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("image dimensions must be positive")
	}
	log := func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}
	fcfg := cfg.fractalConfig()
	watch := stopwatch()
	var fractal gleval.Fractal
	var err error
	if cfg.UseGPU {
		log("using GPU")
		terminate, err := gleval.Init1x1GLFW()
		if err != nil {
			return nil, err
		}
		defer terminate()
		programmer := glbuild.NewDefaultProgrammer()
		programmer.Iterations = fcfg.Iterations
		programmer.EscapeRadius2 = fcfg.EscapeRadius2
		err = programmer.AddFunctions(glsllib.ComplexLibrary()...)
		if err != nil {
			return nil, err
		}
		var source bytes.Buffer
		n, err := programmer.WriteComputeJulia(&source, f)
		if err != nil {
			return nil, err
		} else if n != source.Len() {
			return nil, fmt.Errorf("wrote %d bytes but WriteComputeJulia counted %d", source.Len(), n)
		}
		invocX, _, _ := programmer.ComputeInvocations()
		gpu, err := gleval.NewComputeGPUFractal(&source, gleval.ComputeConfig{Config: fcfg, InvocX: invocX})
		if err != nil {
			return nil, err
		}
		defer gpu.Delete()
		fractal = gpu
	} else {
		log("using CPU")
		if f.ContainsRawCode() {
			return nil, errors.New("formulas with raw shader code require GPU rendering")
		}
		fractal, err = gleval.NewCPUFractal(f, fcfg)
		if err != nil {
			return nil, err
		}
	}
	if cfg.EnableCaching {
		cache, err := gleval.NewCachedFractal(fractal, cfg.Width*cfg.Height)
		if err != nil {
			return nil, err
		}
		fractal = cache
		defer func() {
			pcnt := percentUint64(cache.CacheHits(), cache.Evaluations())
			log("caching omitted", pcnt, "percent of", cache.Evaluations(), "evaluations")
		}()
	}
	log("instantiating fractal took", watch())

	conv := cfg.ColorConversion
	if conv == nil {
		conv = ColorConversionViridis()
	}
	renderer, err := glrender.NewImageRenderer(max(4096, cfg.Width), conv)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	var vp gleval.VecPool
	watch = stopwatch()
	err = renderer.Render(fractal, cfg.Viewport(), img, &vp)
	if err != nil {
		return nil, err
	}
	log("rendered", cfg.Width, "x", cfg.Height, "image in", watch())
	if cfg.Label != "" {
		err = DrawLabel(img, cfg.Label, cfg.LabelConfig)
		if err != nil {
			return nil, fmt.Errorf("drawing label: %w", err)
		}
	}
	return img, nil
}

// RenderPNG renders the formula's fractal and writes it to w in PNG format.
func RenderPNG(w io.Writer, f *gjulia.Formula, cfg RenderConfig) error {
	img, err := RenderImage(f, cfg)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// RenderPNGFile renders the formula's fractal and saves result to a PNG file with said filename.
func RenderPNGFile(filename string, f *gjulia.Formula, cfg RenderConfig) error {
	img, err := RenderImage(f, cfg)
	if err != nil {
		return err
	}
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	err = png.Encode(fp, img)
	if err != nil {
		return err
	}
	return fp.Sync()
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}

// UIConfig configures the interactive viewer. Scrolling zooms, clicking centers the view
// on the point under the cursor, R resets the view and Escape closes the window.
type UIConfig struct {
	// Width and Height of the window in pixels.
	Width, Height int
	// Initial Zoom and Offset of the viewport.
	Zoom   float32
	Offset [2]float32
	// Iterations and EscapeRadius2 are the fractal's iteration parameters. Zero values use defaults.
	Iterations    int
	EscapeRadius2 float32
	// LUT is the lookup texture sampled at the escape progress. If nil [ViridisLUT] is used.
	LUT image.Image
	// Context cancels the viewer's render loop when done.
	Context context.Context
}

func (cfg *UIConfig) viewport() glrender.Viewport {
	vp := glrender.DefaultViewport(float32(cfg.Width) / float32(cfg.Height))
	vp.Zoom = cfg.Zoom
	vp.Offset.X = cfg.Offset[0]
	vp.Offset.Y = cfg.Offset[1]
	return vp
}

// UI opens a window rendering the formula's fractal on the GPU until the window is closed.
// It must be called from the main goroutine locked to its OS thread.
func UI(f *gjulia.Formula, cfg UIConfig) error {
	if f == nil {
		return errors.New("nil formula")
	} else if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.New("window dimensions must be positive")
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = glbuild.DefaultIterations
	}
	if cfg.EscapeRadius2 == 0 {
		cfg.EscapeRadius2 = glbuild.DefaultEscapeRadius2
	}
	return ui(f, cfg)
}
