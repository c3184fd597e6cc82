package imgrename

import (
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/imgrename/pkg/session"
	"github.com/arthur-debert/imgrename/pkg/style"
	"github.com/pterm/pterm"
)

// showProgress draws a progress bar on terminals and drains the updates
// otherwise
func showProgress(w io.Writer, h *session.Handle, visible bool) {
	f, ok := w.(*os.File)
	if !visible || !ok || !style.IsTerminal(f) {
		for range h.Progress() {
		}
		return
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(100).
		WithTitle("Renaming").
		WithWriter(w).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		for range h.Progress() {
		}
		return
	}
	for u := range h.Progress() {
		if d := u.Percent - bar.Current; d > 0 {
			bar.Add(d)
		}
		if u.RowSource != "" {
			bar.UpdateTitle(filepath.Base(u.RowSource))
		}
	}
	_, _ = bar.Stop()
}
