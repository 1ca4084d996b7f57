package main

import (
	"fmt"
	"image/color"

	"github.com/golang/glog"
	"github.com/soypat/gjulia/gjuliaaux"
	"github.com/soypat/gjulia/internal/config"
	"github.com/spf13/cobra"
)

func newRenderCmd(opts *globalOptions) *cobra.Command {
	var output string
	var cache bool
	var flags settingsFlagValues
	cmd := &cobra.Command{
		Use:   "render FORMULA",
		Short: "Render a formula's fractal to a PNG image",
		Long: "Render a formula's fractal to a PNG image.\n" +
			"\n" +
			"Each pixel is colored by the escape progress of its starting value of z, the\n" +
			"same as the fragment shaders written by the compile command. Rendering runs on\n" +
			"the CPU unless --gpu is set. Formulas with quoted shader code require --gpu.",
		Example: "  gjulia render -o julia.png 'z^2 - 0.8 + 0.156i'\n" +
			"  gjulia render --width=1920 --height=1080 --zoom=-1 --label 'sin(z)*(1+i)'",
		Args: formulaArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings(cmd.Flags(), flags.Settings)
			if err != nil {
				return err
			}
			f, err := parseFormula(args[0])
			if err != nil {
				return err
			}
			cfg, err := renderConfig(s, output)
			if err != nil {
				return err
			}
			cfg.EnableCaching = cache
			if s.Label {
				cfg.Label = f.Source()
			}
			if output == "-" {
				return gjuliaaux.RenderPNG(cmd.OutOrStdout(), f, cfg)
			}
			err = gjuliaaux.RenderPNGFile(output, f, cfg)
			if err != nil {
				return err
			}
			glog.V(1).Infof("wrote %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "julia.png", "Output PNG file, - for stdout")
	cmd.Flags().BoolVar(&cache, "cache", false, "Cache evaluations of repeated starting points")
	flags.register(cmd)
	return cmd
}

// renderConfig converts resolved settings to the image rendering configuration.
// Rendering progress is not printed when the image itself is written to stdout.
func renderConfig(s config.Settings, output string) (gjuliaaux.RenderConfig, error) {
	cfg := gjuliaaux.RenderConfig{
		Width:         s.Width,
		Height:        s.Height,
		Zoom:          s.Zoom,
		Offset:        [2]float32{s.OffsetX, s.OffsetY},
		Iterations:    s.Iterations,
		EscapeRadius2: s.EscapeRadius2(),
		UseGPU:        s.GPU,
		Silent:        output == "-" || !bool(glog.V(1)),
	}
	if s.LUT != "" {
		lut, err := gjuliaaux.LoadLUT(s.LUT)
		if err != nil {
			return cfg, err
		}
		var conv func(float32) color.Color
		conv, err = gjuliaaux.ColorConversionLUT(lut)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", s.LUT, err)
		}
		cfg.ColorConversion = conv
	}
	return cfg, nil
}
