package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"

	"trayping/internal/config"
	"trayping/internal/models"
)

// DNSProber asks the target resolver for the root name servers over UDP.
// Any well-formed NOERROR answer counts as reachable.
type DNSProber struct {
	client *dns.Client
}

// NewDNSProber creates a DNS prober with the given per-query timeout.
func NewDNSProber(timeout time.Duration) *DNSProber {
	if timeout <= 0 {
		timeout = 800 * time.Millisecond
	}
	return &DNSProber{
		client: &dns.Client{Net: "udp", Timeout: timeout},
	}
}

// Probe sends a single query and waits for one reply.
func (p *DNSProber) Probe(ctx context.Context, target string) models.ProbeResult {
	target = strings.TrimSpace(target)
	status := models.ProbeResult{
		Target: target,
		Method: config.MethodDNS,
	}

	msg := new(dns.Msg)
	msg.SetQuestion(".", dns.TypeNS)
	msg.RecursionDesired = true

	ctx, cancel := context.WithTimeout(ctx, p.client.Timeout)
	defer cancel()

	reply, rtt, err := p.client.ExchangeContext(ctx, msg, withDefaultPort(target, "53"))
	status.CheckedAt = time.Now().UTC()

	switch {
	case err != nil:
		status.Error = err.Error()
	case reply == nil:
		status.Error = "empty reply"
	case reply.Rcode != dns.RcodeSuccess:
		status.Error = fmt.Sprintf("rcode %s", dns.RcodeToString[reply.Rcode])
	default:
		status.OK = true
		status.Latency = rtt
	}
	return status
}
