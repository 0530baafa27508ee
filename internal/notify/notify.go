package notify

import "github.com/gen2brain/beeep"

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(title, body string) error
}

// Desktop sends notifications through the platform notification service.
type Desktop struct{}

func (Desktop) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(string, string) error { return nil }

// New returns a desktop notifier when enabled, Nop otherwise.
func New(enabled bool) Notifier {
	if enabled {
		return Desktop{}
	}
	return Nop{}
}
