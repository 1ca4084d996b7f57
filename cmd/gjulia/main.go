// Command gjulia compiles fractal formulas to GLSL, renders them to PNG images
// and views them interactively.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/golang/glog"
)

func init() {
	// GL contexts are bound to the thread that creates them.
	runtime.LockOSThread()
}

func main() {
	if err := NewGjuliaCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		glog.Flush()
		os.Exit(1)
	}
}
