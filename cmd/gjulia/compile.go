package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/soypat/gjulia"
	"github.com/soypat/gjulia/glbuild"
	"github.com/soypat/gjulia/glbuild/glsllib"
	"github.com/spf13/cobra"
)

// Shader kinds written by the compile command.
const (
	shaderExpr      = "expr"
	shaderWebGLFrag = "webgl-frag"
	shaderWebGLVert = "webgl-vert"
	shaderCoreFrag  = "core-frag"
	shaderCoreVert  = "core-vert"
	shaderCompute   = "compute"
)

var shaderKinds = []string{shaderExpr, shaderWebGLFrag, shaderWebGLVert, shaderCoreFrag, shaderCoreVert, shaderCompute}

func newCompileCmd(opts *globalOptions) *cobra.Command {
	var shader, output string
	var flags settingsFlagValues
	cmd := &cobra.Command{
		Use:   "compile FORMULA",
		Short: "Compile a formula to GLSL",
		Long: "Compile a formula to GLSL.\n" +
			"\n" +
			"By default the GLSL expression computing the next value of z is printed.\n" +
			"Complete shader programs can be written with --shader, one of:\n" +
			"  expr        the update expression\n" +
			"  webgl-frag  WebGL 1 fragment shader sampling vSampler at the escape progress\n" +
			"  webgl-vert  WebGL 1 vertex shader paired with webgl-frag\n" +
			"  core-frag   OpenGL 4.6 core fragment shader\n" +
			"  core-vert   OpenGL 4.6 core vertex shader paired with core-frag\n" +
			"  compute     compute program in glgl's combined format",
		Example: "  gjulia compile 'z^2 + 0.3 - 0.5i'\n" +
			"  gjulia compile --shader=webgl-frag -o julia.frag 'sin(z)*(1+i)'",
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
			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				fp, err := os.Create(output)
				if err != nil {
					return err
				}
				defer fp.Close()
				w = fp
			}
			programmer := glbuild.NewDefaultProgrammer()
			programmer.Iterations = s.Iterations
			programmer.EscapeRadius2 = s.EscapeRadius2()
			err = programmer.AddFunctions(glsllib.ComplexLibrary()...)
			if err != nil {
				return err
			}
			src, err := writeShader(programmer, shader, f)
			if err != nil {
				return err
			}
			glog.V(3).Infof("%s source:\n%s", shader, src)
			_, err = w.Write(src)
			return err
		},
	}
	cmd.Flags().StringVar(&shader, "shader", shaderExpr, fmt.Sprintf("Kind of GLSL output, one of %v", shaderKinds))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write output to file instead of stdout")
	flags.register(cmd)
	return cmd
}

func writeShader(programmer *glbuild.Programmer, shader string, f *gjulia.Formula) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch shader {
	case shaderExpr:
		buf.WriteString(f.String())
		buf.WriteByte('\n')
	case shaderWebGLFrag:
		_, err = programmer.WriteFragmentWebGL(&buf, f)
	case shaderWebGLVert:
		_, err = programmer.WriteVertexWebGL(&buf)
	case shaderCoreFrag:
		_, err = programmer.WriteFragmentCore(&buf, f)
	case shaderCoreVert:
		_, err = programmer.WriteVertexCore(&buf)
	case shaderCompute:
		_, err = programmer.WriteComputeJulia(&buf, f)
	default:
		return nil, fmt.Errorf("unknown shader kind %q, want one of %v", shader, shaderKinds)
	}
	if err != nil {
		return nil, err
	}
	// Null terminators are needed by glgl only.
	return bytes.TrimRight(buf.Bytes(), "\x00"), nil
}
