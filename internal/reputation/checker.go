package reputation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/phishscan/internal/hostinfo"
	"github.com/nao1215/phishscan/internal/model"
)

// Source names used as keys in ReputationReport.Errors.
const (
	SourceWhois     = "whois"
	SourceDNS       = "dns"
	SourceBlocklist = "blocklist"
)

// Service looks up the reputation of a URL.
type Service interface {
	Lookup(ctx context.Context, rawURL string) (*model.ReputationReport, error)
}

// Checker combines WHOIS, DNS and blocklist sources behind a rate limiter.
// Every source is optional; a Checker without sources only reports host
// information. Checker is safe for concurrent use.
type Checker struct {
	whois     WhoisFunc
	resolve   ResolveFunc
	blocklist *Blocklist
	limiter   *rate.Limiter
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithWhois enables WHOIS lookups.
func WithWhois(fn WhoisFunc) Option {
	return func(c *Checker) {
		c.whois = fn
	}
}

// WithResolver enables DNS presence checks.
func WithResolver(fn ResolveFunc) Option {
	return func(c *Checker) {
		c.resolve = fn
	}
}

// WithBlocklist enables blocklist checks.
func WithBlocklist(b *Blocklist) Option {
	return func(c *Checker) {
		c.blocklist = b
	}
}

// WithRateLimit limits lookups to perSecond with the given burst.
// A non-positive perSecond disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Checker) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger for source failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithClock overrides the time source used to compute domain age.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

// NewChecker creates a Checker with the given options.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup implements Service. The returned report is non-nil whenever the
// URL has a host, even when ErrAllSourcesFailed is returned.
func (c *Checker) Lookup(ctx context.Context, rawURL string) (*model.ReputationReport, error) {
	info, err := hostinfo.Analyze(rawURL)
	if err != nil {
		return nil, fmt.Errorf("cannot look up %q: %w", rawURL, err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	rep := model.NewReputationReport(info.Host)
	rep.RegistrableDomain = info.RegistrableDomain
	rep.Punycode = info.Punycode
	rep.MixedScript = info.MixedScript

	var attempted int
	var errs []error
	record := func(source string, err error) {
		attempted++
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
			rep.AddError(source, err)
			c.logger.Debug("reputation source failed", "source", source, "host", info.Host, "error", err)
		}
	}

	if c.whois != nil && info.RegistrableDomain != "" {
		record(SourceWhois, c.lookupWhois(ctx, info.RegistrableDomain, rep))
	}
	if c.resolve != nil && !info.IsIP {
		record(SourceDNS, c.lookupDNS(ctx, info.ASCII, rep))
	}
	if c.blocklist != nil {
		record(SourceBlocklist, c.lookupBlocklist(ctx, info, rep))
	}

	if attempted > 0 && len(errs) == attempted {
		return rep, fmt.Errorf("%w: %w", ErrAllSourcesFailed, errors.Join(errs...))
	}
	return rep, nil
}

func (c *Checker) lookupWhois(ctx context.Context, domain string, rep *model.ReputationReport) error {
	rec, err := c.whois(ctx, domain)
	if errors.Is(err, ErrDomainNotFound) {
		rep.WhoisChecked = true
		rep.Unregistered = true
		return nil
	}
	if rec.Registrar != "" {
		rep.Registrar = rec.Registrar
	}
	if err != nil {
		return err
	}
	rep.WhoisChecked = true
	created := rec.Created
	rep.DomainCreated = &created
	age := int(c.now().Sub(created).Hours() / 24)
	if age < 0 {
		age = 0
	}
	rep.DomainAgeDays = age
	return nil
}

func (c *Checker) lookupDNS(ctx context.Context, host string, rep *model.ReputationReport) error {
	addrs, err := c.resolve(ctx, host)
	if err != nil {
		return err
	}
	rep.DNSChecked = true
	rep.HasDNSRecord = len(addrs) > 0
	rep.Addresses = addrs
	return nil
}

func (c *Checker) lookupBlocklist(ctx context.Context, info hostinfo.Info, rep *model.ReputationReport) error {
	listed, err := c.blocklist.Contains(ctx, info.Host, info.ASCII, info.RegistrableDomain)
	if err != nil {
		return err
	}
	rep.BlocklistChecked = true
	rep.Blocklisted = listed
	return nil
}
