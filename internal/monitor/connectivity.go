package monitor

import (
	"context"
	"net"
	"strings"
	"time"

	"trayping/internal/config"
	"trayping/internal/models"
)

// Prober issues one liveness check against target. Every failure is reported
// as a negative result, never as an error.
type Prober interface {
	Probe(ctx context.Context, target string) models.ProbeResult
}

// NewProber returns the prober for method, bounded by timeout.
func NewProber(method string, timeout time.Duration) Prober {
	switch method {
	case config.MethodDNS:
		return NewDNSProber(timeout)
	case config.MethodICMP:
		return NewICMPProber(timeout)
	default:
		return NewTCPProber(timeout)
	}
}

// TCPProber checks reachability by opening a TCP connection to the DNS port
// of the target.
type TCPProber struct {
	timeout time.Duration
	dialer  net.Dialer
}

// NewTCPProber creates a TCP prober. Non-positive timeouts fall back to 800ms.
func NewTCPProber(timeout time.Duration) *TCPProber {
	if timeout <= 0 {
		timeout = 800 * time.Millisecond
	}
	return &TCPProber{timeout: timeout}
}

// Probe dials target and closes the connection straight away.
func (p *TCPProber) Probe(ctx context.Context, target string) models.ProbeResult {
	target = strings.TrimSpace(target)
	address := withDefaultPort(target, "53")

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	started := time.Now()
	conn, err := p.dialer.DialContext(ctx, "tcp", address)

	status := models.ProbeResult{
		Target:    target,
		Method:    config.MethodTCP,
		CheckedAt: time.Now().UTC(),
	}

	if err != nil {
		status.Error = err.Error()
	} else {
		status.OK = true
		status.Latency = time.Since(started)
		_ = conn.Close()
	}
	return status
}

func withDefaultPort(target, port string) string {
	if _, _, err := net.SplitHostPort(target); err == nil {
		return target
	}
	return net.JoinHostPort(strings.Trim(target, "[]"), port)
}
