package clipboard

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	atclip "github.com/atotto/clipboard"
)

// isWayland returns true if the session is running under Wayland.
func isWayland() bool {
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

// Copy places text on the system clipboard. On Wayland it uses wl-copy,
// since the X11 clipboard is not shared with native Wayland clients. Elsewhere
// it goes through xclip/xsel.
func Copy(text string) error {
	if isWayland() {
		return copyWayland(text)
	}
	if atclip.Unsupported {
		return fmt.Errorf("no clipboard utility found (install xclip or xsel)")
	}
	if err := atclip.WriteAll(text); err != nil {
		return fmt.Errorf("write to clipboard: %w", err)
	}
	return nil
}

func copyWayland(text string) error {
	if _, err := exec.LookPath("wl-copy"); err != nil {
		return fmt.Errorf("wl-copy not found: %w (install with: apt install wl-clipboard)", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "wl-copy", "--", text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("wl-copy: %w", err)
	}
	return nil
}
