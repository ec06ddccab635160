//go:build darwin || linux || windows

package clip

import (
	"fmt"
	"log/slog"

	"golang.design/x/clipboard"
)

type systemBackend struct{}

// New returns the system clipboard backend, or a headless no-op backend if
// the display environment is unavailable (e.g. a headless server without X11
// or Wayland). clipboard.Init is called here rather than in init() so that
// CLI sub-commands that never touch the clipboard don't trigger the warning.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return NewHeadless()
	}
	return &systemBackend{}
}

func (b *systemBackend) Name() string { return "system clipboard (golang.design)" }

// ReadText converts a panic inside the platform layer into ErrAccess; some
// platforms raise one while another process owns the clipboard.
func (b *systemBackend) ReadText() (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrAccess, r)
		}
	}()
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (b *systemBackend) WriteText(text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrAccess, r)
		}
	}()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *systemBackend) Close() {}
