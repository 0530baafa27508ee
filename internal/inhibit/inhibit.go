// Package inhibit keeps the session from going idle while monitoring runs.
package inhibit

// Inhibitor holds an idle/sleep inhibition while acquired.
type Inhibitor interface {
	Acquire() error
	Release() error
}

// Nop is used where the platform offers no inhibitor.
type Nop struct{}

func (Nop) Acquire() error { return nil }
func (Nop) Release() error { return nil }
