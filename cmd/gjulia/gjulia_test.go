package main

import (
	"bytes"
	"errors"
	"flag"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/gjulia"
	"github.com/soypat/gjulia/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the gjulia command with args using the settings file with the
// given contents instead of searching the working directory.
func execute(t *testing.T, settings string, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gjulia.yaml")
	require.NoError(t, os.WriteFile(path, []byte(settings), 0o644))
	cmd := NewGjuliaCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", path}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCompileCommand(t *testing.T) {
	out, err := execute(t, "", "compile", "z^2 + 0.3 - 0.5i")
	require.NoError(t, err)
	assert.Equal(t, "((cPow(z,vec2(2.,0.))+vec2(0.3,0.))-vec2(0.,0.5))\n", out)

	out, err = execute(t, "", "compile", "--shader=webgl-frag", "--iterations=50", "sin(z)")
	require.NoError(t, err)
	assert.Contains(t, out, "gl_FragColor = texture2D(vSampler, vec2(progress,0.5));")
	assert.Contains(t, out, "i < 50;")
	assert.Contains(t, out, "vec2 cSin(vec2 z)")
	assert.NotContains(t, out, "\x00")

	out, err = execute(t, "escapeRadius: 2\n", "compile", "--shader=compute", "z*z")
	require.NoError(t, err)
	assert.Contains(t, out, "dot(z,z) < 4.")
	assert.Contains(t, out, "#shader compute")

	out, err = execute(t, "", "compile", "--shader=core-vert", "z")
	require.NoError(t, err)
	assert.Contains(t, out, "in vec2 aPosition;")
}

func TestCompileCommandOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "julia.frag")
	out, err := execute(t, "", "compile", "--shader=core-frag", "-o", path, "exp(z)")
	require.NoError(t, err)
	assert.Empty(t, out)
	src, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(src), "z = cExp(z);")
}

func TestCompileCommandErrors(t *testing.T) {
	_, err := execute(t, "", "compile", "clamp(z,0,1)")
	require.Error(t, err)
	var terr *gjulia.TypeError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, 6, terr.Column)
	assert.Contains(t, err.Error(), "\n\tclamp(z,0,1)\n\t      ^")

	_, err = execute(t, "", "compile", "z + foo")
	var perr *gjulia.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, err.Error(), "\n\t    ^")

	_, err = execute(t, "", "compile", "--shader=vertex", "z")
	assert.ErrorContains(t, err, "unknown shader kind")

	_, err = execute(t, "", "compile")
	assert.ErrorIs(t, err, errNoFormula)

	_, err = execute(t, "", "compile", "z", "z")
	assert.Error(t, err)

	_, err = execute(t, "iterations: 0\n", "compile", "z")
	assert.ErrorContains(t, err, "invalid settings")

	_, err = execute(t, "iterationz: 3\n", "compile", "z")
	assert.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "julia.png")
	_, err := execute(t, "width: 24\nheight: 16\n", "render", "-o", path, "--iterations=10", "--label", "z^2-0.8+0.156i")
	require.NoError(t, err)
	fp, err := os.Open(path)
	require.NoError(t, err)
	defer fp.Close()
	img, err := png.Decode(fp)
	require.NoError(t, err)
	assert.Equal(t, 24, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())

	out, err := execute(t, "", "render", "-o", "-", "--width=8", "--height=8", "--cache", "z")
	require.NoError(t, err)
	img, err = png.Decode(bytes.NewReader([]byte(out)))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	_, err = execute(t, "", "render", "-o", "-", "--width=0", "z")
	assert.ErrorContains(t, err, "dimensions must be positive")

	_, err = execute(t, "", "render", "-o", "-", "--lut", filepath.Join(t.TempDir(), "missing.png"), "z")
	assert.Error(t, err)
}

func TestSettingsPrecedence(t *testing.T) {
	opts := globalOptions{configPath: filepath.Join(t.TempDir(), "gjulia.yaml")}
	require.NoError(t, os.WriteFile(opts.configPath, []byte("width: 320\nzoom: 1.5\n"), 0o644))
	cmd := newRenderCmd(&opts)
	require.NoError(t, cmd.Flags().Parse([]string{"--zoom=-2", "--gpu"}))
	var flags settingsFlagValues
	flags.Zoom = -2
	flags.GPU = true
	// Unchanged flag values are ignored even when they differ from the file.
	flags.Width = 1
	s, err := opts.settings(cmd.Flags(), flags.Settings)
	require.NoError(t, err)
	assert.Equal(t, 320, s.Width)
	assert.Equal(t, 600, s.Height)
	assert.Equal(t, float32(-2), s.Zoom)
	assert.True(t, s.GPU)
}

func TestRenderConfigSilentOnStdout(t *testing.T) {
	v := flag.Lookup("v")
	require.NotNil(t, v)
	prev := v.Value.String()
	require.NoError(t, v.Value.Set("1"))
	t.Cleanup(func() { v.Value.Set(prev) })

	cfg, err := renderConfig(config.DefaultSettings(), "-")
	require.NoError(t, err)
	assert.True(t, cfg.Silent, "progress must not be mixed with PNG data on stdout")

	cfg, err = renderConfig(config.DefaultSettings(), "julia.png")
	require.NoError(t, err)
	assert.False(t, cfg.Silent)
}
