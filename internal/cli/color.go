package cli

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/hupe1980/toon/internal/config"
)

// colorEnabled reports whether ANSI colors should be written to w. Colors
// are used only on terminals and never when --no-color or NO_COLOR is set.
func colorEnabled(ctx context.Context, w io.Writer) bool {
	if config.FromContext(ctx).NoColor {
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}
