package indicator

import (
	"context"

	"fyne.io/systray"

	"trayping/internal/models"
)

// SystraySurface draws on the OS notification area. It must be created from
// the systray ready callback.
type SystraySurface struct {
	toggle *systray.MenuItem
	exit   *systray.MenuItem
}

// NewSystraySurface builds the tray menu: the pause/resume toggle, a
// separator and Exit.
func NewSystraySurface(tooltip string) *SystraySurface {
	systray.SetTooltip(tooltip)
	toggle := systray.AddMenuItem(models.LabelPause, "Pause or resume monitoring")
	systray.AddSeparator()
	exit := systray.AddMenuItem(models.LabelExit, "Quit Tray ping")
	return &SystraySurface{toggle: toggle, exit: exit}
}

func (s *SystraySurface) SetIcon(icon []byte)         { systray.SetIcon(icon) }
func (s *SystraySurface) SetTooltip(text string)      { systray.SetTooltip(text) }
func (s *SystraySurface) SetToggleLabel(label string) { s.toggle.SetTitle(label) }
func (s *SystraySurface) Quit()                       { systray.Quit() }

// Serve forwards menu clicks to h until Exit is clicked or ctx is done.
func (s *SystraySurface) Serve(ctx context.Context, h MenuHandler) {
	for {
		select {
		case <-s.toggle.ClickedCh:
			h.TogglePause()
		case <-s.exit.ClickedCh:
			h.Exit()
			return
		case <-ctx.Done():
			return
		}
	}
}
