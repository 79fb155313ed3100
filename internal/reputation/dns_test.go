package reputation

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
)

// startDNSServer runs a local UDP DNS server answering from records.
// Names listed in servfail answer SERVFAIL; unknown names answer NXDOMAIN.
func startDNSServer(t *testing.T, records map[string][]string, servfail map[string]bool) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}

	handler := dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		q := r.Question[0]
		switch {
		case servfail[q.Name]:
			m.Rcode = dns.RcodeServerFailure
		case records[q.Name] == nil:
			m.Rcode = dns.RcodeNameError
		default:
			for _, rec := range records[q.Name] {
				rr, err := dns.NewRR(rec)
				if err == nil && rr.Header().Rrtype == q.Qtype {
					m.Answer = append(m.Answer, rr)
				}
			}
		}
		_ = w.WriteMsg(m)
	})

	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })

	return pc.LocalAddr().String()
}

func TestDNSResolver_Resolve(t *testing.T) {
	t.Parallel()

	addr := startDNSServer(t, map[string][]string{
		"example.test.": {
			"example.test. 60 IN A 192.0.2.1",
			"example.test. 60 IN AAAA 2001:db8::1",
		},
		"v4only.test.": {"v4only.test. 60 IN A 192.0.2.2"},
	}, map[string]bool{"broken.test.": true})

	r := NewDNSResolver(addr, 2*time.Second)
	ctx := context.Background()

	t.Run("A and AAAA", func(t *testing.T) {
		t.Parallel()
		addrs, err := r.Resolve(ctx, "example.test")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(addrs) != 2 || addrs[0] != "192.0.2.1" || addrs[1] != "2001:db8::1" {
			t.Errorf("addrs = %v", addrs)
		}
	})

	t.Run("A only", func(t *testing.T) {
		t.Parallel()
		addrs, err := r.Resolve(ctx, "v4only.test")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(addrs) != 1 {
			t.Errorf("addrs = %v", addrs)
		}
	})

	t.Run("NXDOMAIN is not an error", func(t *testing.T) {
		t.Parallel()
		addrs, err := r.Resolve(ctx, "missing.test")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(addrs) != 0 {
			t.Errorf("addrs = %v", addrs)
		}
	})

	t.Run("SERVFAIL is an error", func(t *testing.T) {
		t.Parallel()
		if _, err := r.Resolve(ctx, "broken.test"); !errors.Is(err, ErrDNSFailure) {
			t.Errorf("expected ErrDNSFailure, got %v", err)
		}
	})
}
