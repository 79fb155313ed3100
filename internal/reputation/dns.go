package reputation

import (
	"context"
	"fmt"
	"time"

	"github.com/miekg/dns"
)

// DefaultDNSServer is the resolver queried when none is configured.
const DefaultDNSServer = "8.8.8.8:53"

// ResolveFunc returns the addresses a host resolves to. A host that does
// not exist yields no addresses and no error.
type ResolveFunc func(ctx context.Context, host string) ([]string, error)

// DNSResolver queries A and AAAA records with miekg/dns against a single
// upstream server.
type DNSResolver struct {
	client *dns.Client
	server string
}

// NewDNSResolver creates a resolver for server ("host:port").
func NewDNSResolver(server string, timeout time.Duration) *DNSResolver {
	if server == "" {
		server = DefaultDNSServer
	}
	return &DNSResolver{
		client: &dns.Client{Timeout: timeout},
		server: server,
	}
}

// Resolve implements ResolveFunc.
func (r *DNSResolver) Resolve(ctx context.Context, host string) ([]string, error) {
	var addrs []string
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		m := new(dns.Msg)
		m.SetQuestion(dns.Fqdn(host), qtype)

		in, _, err := r.client.ExchangeContext(ctx, m, r.server)
		if err != nil {
			return nil, fmt.Errorf("%s query for %q failed: %w", dns.TypeToString[qtype], host, err)
		}

		switch in.Rcode {
		case dns.RcodeSuccess:
		case dns.RcodeNameError:
			// NXDOMAIN: the name does not exist for any type.
			return addrs, nil
		default:
			return nil, fmt.Errorf("%w: %s for %q", ErrDNSFailure, dns.RcodeToString[in.Rcode], host)
		}

		for _, rr := range in.Answer {
			switch v := rr.(type) {
			case *dns.A:
				addrs = append(addrs, v.A.String())
			case *dns.AAAA:
				addrs = append(addrs, v.AAAA.String())
			}
		}
	}
	return addrs, nil
}
