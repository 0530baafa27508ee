// Package indicator renders the run and reachability state in the
// notification area.
package indicator

import (
	"go.uber.org/zap"

	"trayping/internal/models"
)

// Surface is the platform tray the indicator draws on.
type Surface interface {
	SetIcon(icon []byte)
	SetTooltip(text string)
	SetToggleLabel(label string)
	Quit()
}

// MenuHandler receives the tray menu actions.
type MenuHandler interface {
	TogglePause()
	Exit()
}

// Indicator maps icon states onto a Surface. It is not safe for concurrent
// use; the controller serializes every call.
type Indicator struct {
	surface Surface
	icons   Icons
	log     *zap.Logger

	shown   bool
	icon    models.IconState
	label   string
	tooltip string
}

// New creates an indicator drawing icons on surface.
func New(surface Surface, icons Icons, log *zap.Logger) *Indicator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Indicator{surface: surface, icons: icons, log: log.Named("indicator")}
}

// SetIcon shows the icon for state. Writing the icon already on screen is skipped.
func (i *Indicator) SetIcon(state models.IconState) {
	if i.shown && i.icon == state {
		return
	}
	i.surface.SetIcon(i.icons.For(state))
	if i.shown {
		i.log.Debug("icon changed", zap.Stringer("from", i.icon), zap.Stringer("to", state))
	}
	i.icon = state
	i.shown = true
}

// SetMenuLabel sets the text of the pause/resume item.
func (i *Indicator) SetMenuLabel(label string) {
	if label == i.label {
		return
	}
	i.surface.SetToggleLabel(label)
	i.label = label
}

// SetTooltip sets the hover text.
func (i *Indicator) SetTooltip(text string) {
	if text == i.tooltip {
		return
	}
	i.surface.SetTooltip(text)
	i.tooltip = text
}

// Icon returns the icon state currently shown.
func (i *Indicator) Icon() models.IconState { return i.icon }

// Label returns the current toggle label.
func (i *Indicator) Label() string { return i.label }

// Quit tears the tray down.
func (i *Indicator) Quit() { i.surface.Quit() }
