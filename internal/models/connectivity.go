package models

import "time"

// ProbeResult captures the outcome of a single reachability probe.
type ProbeResult struct {
	Target    string        `json:"target"`
	Method    string        `json:"method"`
	OK        bool          `json:"ok"`
	Latency   time.Duration `json:"latency"`
	Error     string        `json:"error,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
}

// Reachability converts the probe outcome into a reachability status.
func (r ProbeResult) Reachability() Reachability {
	if r.OK {
		return Reachable
	}
	return Unreachable
}
