package models

// RunState tells whether the periodic tasks are running.
type RunState int

const (
	Active RunState = iota
	Paused
)

func (s RunState) String() string {
	if s == Paused {
		return "paused"
	}
	return "active"
}

// Reachability is the latest known probe outcome. Only the most recent value is kept.
type Reachability int

const (
	Unknown Reachability = iota
	Reachable
	Unreachable
)

func (r Reachability) String() string {
	switch r {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// IconState is what the tray currently shows.
type IconState int

const (
	IconUnreachable IconState = iota
	IconReachable
	IconPaused
)

func (s IconState) String() string {
	switch s {
	case IconReachable:
		return "green"
	case IconPaused:
		return "yellow"
	default:
		return "red"
	}
}

// IconFor derives the icon from the run state and reachability. Unknown
// reachability is shown as unreachable until the first probe completes.
func IconFor(state RunState, reach Reachability) IconState {
	if state == Paused {
		return IconPaused
	}
	if reach == Reachable {
		return IconReachable
	}
	return IconUnreachable
}

// Menu labels for the pause/resume toggle.
const (
	LabelPause  = "Pause"
	LabelResume = "Resume"
	LabelExit   = "Exit"
)

// ToggleLabel is the action offered by the toggle item in the given state.
func ToggleLabel(state RunState) string {
	if state == Paused {
		return LabelResume
	}
	return LabelPause
}
