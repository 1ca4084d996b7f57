package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/soypat/gjulia"
	"github.com/soypat/gjulia/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type globalOptions struct {
	verbose     int
	logToStderr bool
	configPath  string
}

// NewGjuliaCmd creates the root gjulia command.
func NewGjuliaCmd() *cobra.Command {
	var opts globalOptions
	cmd := &cobra.Command{
		Use:   "gjulia",
		Short: "Compile, render and view Julia fractal formulas",
		Long: "Compile, render and view Julia fractal formulas.\n" +
			"\n" +
			"A formula describes the update applied to the complex variable z on every iteration,\n" +
			"for example \"z^2 + 0.3 - 0.5i\". Settings are read from gjulia.yaml or .gjulia.yaml\n" +
			"in the working directory or its parents and are overridden by flags.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging(opts.logToStderr, opts.verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			glog.Flush()
		},
	}
	cmd.PersistentFlags().IntVarP(&opts.verbose, "verbose", "v", 0,
		"Enable verbose logging (e.g., v=3); anything >3 is very verbose")
	cmd.PersistentFlags().BoolVar(&opts.logToStderr, "logtostderr", false,
		"Log to stderr instead of to files")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a YAML settings file. Searched for in the working directory and its parents if not set")

	cmd.AddCommand(newCompileCmd(&opts))
	cmd.AddCommand(newRenderCmd(&opts))
	cmd.AddCommand(newViewCmd(&opts))
	return cmd
}

// initLogging ensures the glog library has been initialized with the given settings.
// glog only reads its settings from the standard flag set, which cobra does not parse.
func initLogging(logToStderr bool, verbose int) {
	if !flag.Parsed() {
		flag.CommandLine.Parse(nil)
	}
	if logToStderr {
		flag.Lookup("logtostderr").Value.Set("true")
	}
	if verbose > 0 {
		flag.Lookup("v").Value.Set(strconv.Itoa(verbose))
	}
}

// settingsFlagValues holds the values of the settings flags of a single command.
type settingsFlagValues struct {
	config.Settings
}

func (v *settingsFlagValues) register(cmd *cobra.Command) {
	settingsFlags(cmd.Flags(), &v.Settings)
}

// settingsFlags registers flags overriding file settings. Values are stored in dst
// and applied over file settings by [globalOptions.settings] only when set.
func settingsFlags(fs *pflag.FlagSet, dst *config.Settings) {
	def := config.DefaultSettings()
	fs.IntVar(&dst.Width, "width", def.Width, "Width in pixels")
	fs.IntVar(&dst.Height, "height", def.Height, "Height in pixels")
	fs.Float32Var(&dst.Zoom, "zoom", def.Zoom, "Natural logarithm of the visible half height of the plane")
	fs.Float32Var(&dst.OffsetX, "offset-x", def.OffsetX, "Horizontal viewport offset, subtracted from the scaled position")
	fs.Float32Var(&dst.OffsetY, "offset-y", def.OffsetY, "Vertical viewport offset, subtracted from the scaled position")
	fs.IntVar(&dst.Iterations, "iterations", def.Iterations, "Number of times the formula is applied")
	fs.Float32Var(&dst.EscapeRadius, "escape-radius", def.EscapeRadius, "Modulus of z under which an iteration counts towards the progress")
	fs.StringVar(&dst.LUT, "lut", def.LUT, "Lookup texture image mapping progress to color, viridis if not set")
	fs.BoolVar(&dst.Label, "label", def.Label, "Draw the formula on the rendered image")
	fs.BoolVar(&dst.GPU, "gpu", def.GPU, "Evaluate on the GPU")
}

// settings resolves defaults, then the settings file, then the flags set in fs.
func (opts *globalOptions) settings(fs *pflag.FlagSet, flags config.Settings) (config.Settings, error) {
	s := config.DefaultSettings()
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
		if err != nil {
			return s, err
		}
		glog.V(1).Infof("using settings file %s", opts.configPath)
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return s, err
		}
		var path string
		cfg, path, err = config.Load(wd)
		if err != nil {
			return s, err
		} else if path != "" {
			glog.V(1).Infof("using settings file %s", path)
		}
	}
	cfg.Apply(&s)
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "width":
			s.Width = flags.Width
		case "height":
			s.Height = flags.Height
		case "zoom":
			s.Zoom = flags.Zoom
		case "offset-x":
			s.OffsetX = flags.OffsetX
		case "offset-y":
			s.OffsetY = flags.OffsetY
		case "iterations":
			s.Iterations = flags.Iterations
		case "escape-radius":
			s.EscapeRadius = flags.EscapeRadius
		case "lut":
			s.LUT = flags.LUT
		case "label":
			s.Label = flags.Label
		case "gpu":
			s.GPU = flags.GPU
		}
	})
	err = s.Validate()
	if err != nil {
		return s, fmt.Errorf("invalid settings: %w", err)
	}
	glog.V(2).Infof("settings: %+v", s)
	return s, nil
}

// parseFormula parses formula and decorates compile errors with a caret under the offending column.
func parseFormula(formula string) (*gjulia.Formula, error) {
	f, err := gjulia.Parse(formula)
	if err != nil {
		return nil, describeCompileError(formula, err)
	}
	glog.V(1).Infof("compiled %q to %s", formula, f.String())
	return f, nil
}

func describeCompileError(formula string, err error) error {
	col, ok := gjulia.ErrorColumn(err)
	if !ok {
		return err
	}
	runes := []rune(strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(formula))
	col = min(col, len(runes))
	return &compileError{err: err, formula: string(runes), col: col}
}

type compileError struct {
	err     error
	formula string
	col     int
}

func (e *compileError) Error() string {
	return e.err.Error() + "\n\t" + e.formula + "\n\t" + strings.Repeat(" ", e.col) + "^"
}

func (e *compileError) Unwrap() error { return e.err }

var errNoFormula = errors.New("missing formula argument")

func formulaArg(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errNoFormula
	}
	return cobra.ExactArgs(1)(cmd, args)
}
