package reputation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nao1215/phishscan/internal/hostinfo"
)

// DefaultBlocklistTTL is how long a fetched feed is trusted before it is
// fetched again.
const DefaultBlocklistTTL = time.Hour

// blocklistFetchTimeout bounds one fetch of the feed. The fetch is shared by
// every waiting caller, so it does not follow any single caller's context.
const blocklistFetchTimeout = time.Minute

// Blocklist is a feed of known phishing hosts, one URL or hostname per
// line. Lines starting with '#' and blank lines are ignored. The feed is
// fetched lazily on first use and refreshed after its TTL expires.
// Blocklist is safe for concurrent use.
type Blocklist struct {
	source string
	ttl    time.Duration
	client *http.Client
	now    func() time.Time

	refresh singleflight.Group

	mu       sync.Mutex
	hosts    map[string]struct{}
	loadedAt time.Time
}

// BlocklistOption configures a Blocklist.
type BlocklistOption func(*Blocklist)

// WithBlocklistTTL sets the refresh interval of the feed.
func WithBlocklistTTL(ttl time.Duration) BlocklistOption {
	return func(b *Blocklist) {
		b.ttl = ttl
	}
}

// WithBlocklistHTTPClient sets the HTTP client used for http(s) feeds.
func WithBlocklistHTTPClient(client *http.Client) BlocklistOption {
	return func(b *Blocklist) {
		b.client = client
	}
}

// NewBlocklist creates a Blocklist reading from source, which is either an
// http(s) URL or a local file path.
func NewBlocklist(source string, opts ...BlocklistOption) *Blocklist {
	b := &Blocklist{
		source: source,
		ttl:    DefaultBlocklistTTL,
		client: http.DefaultClient,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Contains reports whether any of hosts is listed. Empty hosts are ignored.
func (b *Blocklist) Contains(ctx context.Context, hosts ...string) (bool, error) {
	set, err := b.load(ctx)
	if err != nil {
		return false, err
	}
	for _, h := range hosts {
		if h == "" {
			continue
		}
		if _, ok := set[strings.ToLower(h)]; ok {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the number of hosts in the cached feed.
func (b *Blocklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.hosts)
}

// load returns the cached host set, fetching the feed when it is missing
// or stale. Concurrent callers share one fetch, and each stops waiting
// when its own ctx is done. A failed refresh keeps serving the previous set.
func (b *Blocklist) load(ctx context.Context) (map[string]struct{}, error) {
	if hosts, fresh := b.cached(); fresh {
		return hosts, nil
	}

	ch := b.refresh.DoChan("feed", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), blocklistFetchTimeout)
		defer cancel()
		hosts, err := b.fetch(fetchCtx)

		b.mu.Lock()
		defer b.mu.Unlock()
		if err != nil {
			if b.hosts != nil {
				return b.hosts, nil
			}
			return nil, err
		}
		b.hosts = hosts
		b.loadedAt = b.now()
		return hosts, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		hosts, _ := res.Val.(map[string]struct{})
		return hosts, nil
	}
}

// cached returns the current set and whether it is still within its TTL.
func (b *Blocklist) cached() (map[string]struct{}, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hosts, b.hosts != nil && b.now().Sub(b.loadedAt) < b.ttl
}

// fetch reads and parses the feed.
func (b *Blocklist) fetch(ctx context.Context) (map[string]struct{}, error) {
	var r io.ReadCloser
	if strings.HasPrefix(b.source, "http://") || strings.HasPrefix(b.source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.source, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBlocklistFetch, err)
		}
		resp, err := b.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBlocklistFetch, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: status %d", ErrBlocklistFetch, resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(b.source)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBlocklistFetch, err)
		}
		r = f
	}
	defer r.Close()

	return parseBlocklist(r)
}

// parseBlocklist reads one entry per line. Entries with a scheme are
// reduced to their hostname.
func parseBlocklist(r io.Reader) (map[string]struct{}, error) {
	hosts := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		host := strings.ToLower(line)
		if strings.Contains(line, "://") {
			host = hostinfo.Hostname(line)
		}
		if host != "" {
			hosts[host] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read blocklist: %w", err)
	}
	return hosts, nil
}
