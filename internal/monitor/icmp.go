package monitor

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"trayping/internal/config"
	"trayping/internal/models"
)

// ICMPProber sends a single echo request. Windows requires privileged raw
// sockets; elsewhere the unprivileged datagram mode is used.
type ICMPProber struct {
	timeout    time.Duration
	privileged bool
}

// NewICMPProber creates an ICMP prober with the given reply timeout.
func NewICMPProber(timeout time.Duration) *ICMPProber {
	if timeout <= 0 {
		timeout = 800 * time.Millisecond
	}
	return &ICMPProber{
		timeout:    timeout,
		privileged: runtime.GOOS == "windows",
	}
}

// Probe pings target once.
func (p *ICMPProber) Probe(ctx context.Context, target string) models.ProbeResult {
	target = strings.TrimSpace(target)
	status := models.ProbeResult{
		Target: target,
		Method: config.MethodICMP,
	}

	pinger, err := probing.NewPinger(target)
	if err != nil {
		status.CheckedAt = time.Now().UTC()
		status.Error = err.Error()
		return status
	}
	pinger.Count = 1
	pinger.Timeout = p.timeout
	pinger.SetPrivileged(p.privileged)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = pinger.RunWithContext(ctx)
	status.CheckedAt = time.Now().UTC()
	stats := pinger.Statistics()

	switch {
	case stats.PacketsRecv > 0:
		status.OK = true
		status.Latency = stats.AvgRtt
	case err != nil && !errors.Is(err, context.DeadlineExceeded):
		status.Error = err.Error()
	default:
		status.Error = "request timed out"
	}
	return status
}
