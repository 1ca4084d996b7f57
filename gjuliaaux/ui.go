//go:build !tinygo && cgo

package gjuliaaux

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gjulia"
	"github.com/soypat/gjulia/glbuild"
	"github.com/soypat/gjulia/glbuild/glsllib"
	"github.com/soypat/glgl/v4.6-core/glgl"
)

func ui(f *gjulia.Formula, cfg UIConfig) error {
	programmer := glbuild.NewDefaultProgrammer()
	programmer.Iterations = cfg.Iterations
	programmer.EscapeRadius2 = cfg.EscapeRadius2
	err := programmer.AddFunctions(glsllib.ComplexLibrary()...)
	if err != nil {
		return err
	}
	var vertSrc, fragSrc bytes.Buffer
	_, err = programmer.WriteVertexCore(&vertSrc)
	if err != nil {
		return err
	}
	_, err = programmer.WriteFragmentCore(&fragSrc, f)
	if err != nil {
		return err
	}
	window, term, err := startGLFW(cfg.Width, cfg.Height, "gjulia: "+f.Source())
	if err != nil {
		return err
	}
	defer term()
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vertSrc.String(),
		Fragment: fragSrc.String(),
	})
	if err != nil {
		return fmt.Errorf("%s\n\n%w", fragSrc.String(), err)
	}
	defer prog.Delete()
	prog.Bind()
	// Define a quad covering the screen
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	vertices := []float32{
		-1.0, -1.0,
		1.0, -1.0,
		-1.0, 1.0,
		-1.0, 1.0,
		1.0, -1.0,
		1.0, 1.0,
	}
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)
	aspectUniform, err := prog.UniformLocation("aspectRatio\x00")
	if err != nil {
		return err
	}
	zoomUniform, err := prog.UniformLocation("zoom\x00")
	if err != nil {
		return err
	}
	offsetUniform, err := prog.UniformLocation("offset\x00")
	if err != nil {
		return err
	}
	samplerUniform, err := prog.UniformLocation("vSampler\x00")
	if err != nil {
		return err
	}
	posAttrib, err := prog.AttribLocation("aPosition\x00")
	if err != nil {
		return err
	}
	gl.EnableVertexAttribArray(posAttrib)
	gl.VertexAttribPointer(posAttrib, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))

	lut := cfg.LUT
	if lut == nil {
		lut = ViridisLUT(256)
	}
	tex := loadLUTTexture(lut)
	defer gl.DeleteTextures(1, &tex)
	gl.Uniform1i(samplerUniform, 0)

	vp := cfg.viewport()
	refresh := true
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		// Scrolling down zooms out.
		vp.Scroll(float32(-yoff))
		refresh = true
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft || action != glfw.Press {
			return
		}
		x, y := w.GetCursorPos()
		width, height := w.GetSize()
		vp.Click(ms2.Vec{
			X: float32(2*x/float64(width) - 1),
			Y: float32(2*y/float64(height) - 1),
		})
		refresh = true
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyR:
			vp.Reset()
			refresh = true
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		}
	})

	ctx := cfg.Context
	for !window.ShouldClose() {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		if refresh {
			refresh = false
			gl.ClearColor(0.0, 0.0, 0.0, 1.0)
			gl.Clear(gl.COLOR_BUFFER_BIT)
			prog.Bind()
			gl.Uniform1f(aspectUniform, vp.AspectRatio)
			gl.Uniform1f(zoomUniform, vp.Zoom)
			gl.Uniform2f(offsetUniform, vp.Offset.X, vp.Offset.Y)
			gl.BindVertexArray(vao)
			gl.DrawArrays(gl.TRIANGLES, 0, 6)
			window.SwapBuffers()
			err = glgl.Err()
			if err != nil {
				return err
			}
		}
		// Limit frame rate.
		time.Sleep(time.Second / 60)
		glfw.PollEvents()
	}
	return nil
}

func loadLUTTexture(lut image.Image) (tex uint32) {
	rgba, ok := lut.(*image.RGBA)
	if !ok || rgba.Stride != 4*rgba.Rect.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, lut.Bounds().Dx(), lut.Bounds().Dy()))
		draw.Draw(rgba, rgba.Bounds(), lut, lut.Bounds().Min, draw.Src)
	}
	gl.GenTextures(1, &tex)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(rgba.Rect.Dx()), int32(rgba.Rect.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	return tex
}

func startGLFW(width, height int, title string) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// Create GLFW window
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err = glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	window.MakeContextCurrent()

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	return window, glfw.Terminate, nil
}
