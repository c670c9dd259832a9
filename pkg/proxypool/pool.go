package proxypool

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Strategy selects one endpoint from the pool for an outbound call.
// This is defined here to avoid import cycles with the strategies package.
type Strategy interface {
	Pick(available []Endpoint) (Endpoint, error)
	Name() string
	Reset()
}

// TransportConfig carries the connection pooling knobs applied to every
// per-endpoint transport.
type TransportConfig struct {
	// DialTimeout bounds connection establishment. Zero means no bound.
	DialTimeout time.Duration

	// ResponseHeaderTimeout bounds the wait for response headers after a
	// request is written. Zero means no bound.
	ResponseHeaderTimeout time.Duration

	// MaxIdleConns caps idle connections kept per transport.
	MaxIdleConns int

	// IdleConnTimeout is how long idle connections are kept.
	IdleConnTimeout time.Duration
}

// Config contains configuration for a proxy pool.
type Config struct {
	// Endpoints is the set of proxies to select from. Must be non-empty.
	Endpoints []Endpoint

	// Strategy selects an endpoint per call. Must be non-nil; use the
	// strategies package to construct one.
	Strategy Strategy

	// Transport configures the per-endpoint transports.
	Transport TransportConfig
}

// Pool holds a fixed set of proxy endpoints and selects one per outbound
// call using its strategy. The endpoint set never changes after
// construction; operators change the pool by editing the configured
// source and restarting.
//
// Each endpoint gets its own *http.Transport so connection pools are not
// shared across proxies. Transports are built lazily on first use and
// cached for the life of the pool.
//
// All methods are safe for concurrent use.
type Pool struct {
	endpoints []Endpoint
	strategy  Strategy
	transport TransportConfig
	stats     *PickStats

	mu         sync.Mutex
	transports map[string]*http.Transport
}

// NewPool creates a pool from the given configuration.
// Returns ErrEmptyPool when no endpoints are configured and
// ErrNilStrategy when no strategy is set.
func NewPool(config Config) (*Pool, error) {
	if len(config.Endpoints) == 0 {
		return nil, ErrEmptyPool
	}
	if config.Strategy == nil {
		return nil, ErrNilStrategy
	}

	endpoints := make([]Endpoint, len(config.Endpoints))
	copy(endpoints, config.Endpoints)

	return &Pool{
		endpoints:  endpoints,
		strategy:   config.Strategy,
		transport:  config.Transport,
		stats:      NewPickStats(),
		transports: make(map[string]*http.Transport),
	}, nil
}

// Pick selects an endpoint for one outbound call.
func (p *Pool) Pick() (Endpoint, error) {
	ep, err := p.strategy.Pick(p.endpoints)
	if err != nil {
		p.stats.RecordError()
		return Endpoint{}, err
	}

	p.stats.RecordPick(ep.Key())
	return ep, nil
}

// Transport returns the cached transport for the given endpoint,
// building it on first use. The transport routes all requests through
// the endpoint via its proxy URL.
func (p *Pool) Transport(ep Endpoint) *http.Transport {
	// Key by the full URL so entries differing only by credentials do
	// not share proxy auth.
	key := ep.URL().String()

	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.transports[key]; ok {
		return t
	}

	t := p.buildTransport(ep)
	p.transports[key] = t
	return t
}

func (p *Pool) buildTransport(ep Endpoint) *http.Transport {
	dialer := &net.Dialer{
		Timeout: p.transport.DialTimeout,
	}

	return &http.Transport{
		Proxy:       http.ProxyURL(ep.URL()),
		DialContext: dialer.DialContext,
		// All traffic funnels to a single upstream host, so the per-host
		// cap matches the total cap.
		MaxIdleConns:          p.transport.MaxIdleConns,
		MaxIdleConnsPerHost:   p.transport.MaxIdleConns,
		IdleConnTimeout:       p.transport.IdleConnTimeout,
		ResponseHeaderTimeout: p.transport.ResponseHeaderTimeout,
		DisableCompression:    false,
		ForceAttemptHTTP2:     true,
	}
}

// Size returns the number of endpoints in the pool.
func (p *Pool) Size() int {
	return len(p.endpoints)
}

// Endpoints returns a copy of the endpoint set.
func (p *Pool) Endpoints() []Endpoint {
	out := make([]Endpoint, len(p.endpoints))
	copy(out, p.endpoints)
	return out
}

// StrategyName returns the name of the configured selection strategy.
func (p *Pool) StrategyName() string {
	return p.strategy.Name()
}

// Stats returns a snapshot of selection statistics.
func (p *Pool) Stats() *StatsSnapshot {
	return p.stats.Snapshot()
}

// CloseIdleConnections closes idle connections on every cached
// transport. Called during shutdown.
func (p *Pool) CloseIdleConnections() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range p.transports {
		t.CloseIdleConnections()
	}
}
