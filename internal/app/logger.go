package app

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/corey/grammarbind/internal/adapters/gypbuild"
	"github.com/corey/grammarbind/internal/adapters/treesitter"
)

var (
	logger atomic.Pointer[zap.Logger]
	nop    = zap.NewNop()
)

// Logger returns the app package's logger. No-op by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nop
}

// SetLogger installs l for the app package and every adapter it drives.
// nil restores the no-op default.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
	gypbuild.SetLogger(l)
	treesitter.SetLogger(l)
}
