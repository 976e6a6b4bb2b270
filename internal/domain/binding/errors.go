package binding

import (
	"errors"
	"fmt"
)

// ErrNullLanguage is returned when a grammar's language function returns NULL.
var ErrNullLanguage = errors.New("language function returned null")

// ModuleLoadError reports that the native library could not be found or loaded
// under the selected strategy. It is fatal: there is no retry.
type ModuleLoadError struct {
	Strategy Kind
	Path     string // may be empty when the build loader failed before locating a file
	Err      error
}

func (e *ModuleLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load native module (%s): %v", e.Strategy, e.Err)
	}
	return fmt.Sprintf("load native module (%s) %s: %v", e.Strategy, e.Path, e.Err)
}

func (e *ModuleLoadError) Unwrap() error { return e.Err }

// IsModuleLoadError reports whether err wraps a *ModuleLoadError.
func IsModuleLoadError(err error) bool {
	var mle *ModuleLoadError
	return errors.As(err, &mle)
}
