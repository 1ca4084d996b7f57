package main

import (
	"os"
	"os/signal"

	"github.com/soypat/gjulia/gjuliaaux"
	"github.com/spf13/cobra"
)

func newViewCmd(opts *globalOptions) *cobra.Command {
	var flags settingsFlagValues
	cmd := &cobra.Command{
		Use:   "view FORMULA",
		Short: "View a formula's fractal in an interactive window",
		Long: "View a formula's fractal in an interactive window rendered on the GPU.\n" +
			"\n" +
			"Scroll to zoom, click to center the view on the point under the cursor,\n" +
			"press R to reset the view and Escape to quit.",
		Example: "  gjulia view 'z^2 + 0.3 - 0.5i'",
		Args:    formulaArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings(cmd.Flags(), flags.Settings)
			if err != nil {
				return err
			}
			f, err := parseFormula(args[0])
			if err != nil {
				return err
			}
			cfg := gjuliaaux.UIConfig{
				Width:         s.Width,
				Height:        s.Height,
				Zoom:          s.Zoom,
				Offset:        [2]float32{s.OffsetX, s.OffsetY},
				Iterations:    s.Iterations,
				EscapeRadius2: s.EscapeRadius2(),
			}
			if s.LUT != "" {
				cfg.LUT, err = gjuliaaux.LoadLUT(s.LUT)
				if err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			cfg.Context = ctx
			return gjuliaaux.UI(f, cfg)
		},
	}
	flags.register(cmd)
	return cmd
}
