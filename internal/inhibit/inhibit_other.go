//go:build !linux

package inhibit

import "go.uber.org/zap"

// New returns Nop; only logind is supported.
func New(_ *zap.Logger) Inhibitor {
	return Nop{}
}
