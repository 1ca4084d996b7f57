//go:build tinygo || !cgo

package gjuliaaux

import (
	"errors"

	"github.com/soypat/gjulia"
)

func ui(f *gjulia.Formula, cfg UIConfig) error {
	return errors.New("require cgo for UI rendering")
}
