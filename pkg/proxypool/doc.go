// Package proxypool selects forward proxies for outbound upstream calls.
//
// # Overview
//
// A Pool holds a fixed set of proxy endpoints loaded at startup from the
// configured source (inline config, a newline-delimited file, or a git
// repository via the gitsource subpackage). Every outbound call asks the
// pool for an endpoint and sends the request through that endpoint's
// transport. The pool itself is immutable: changing the proxy list
// requires a restart, and a poll watcher only reports drift.
//
// Selection is delegated to a Strategy. The strategies subpackage ships
// two implementations:
//
//   - random: uniform selection from a seeded generator. Each endpoint
//     has an equal chance per call, so sustained traffic spreads evenly
//     without per-request state. This is the default.
//   - round_robin: strict rotation using an atomic counter.
//
// # Usage
//
//	endpoints, err := proxypool.ParseEndpoints(cfg.Proxy.Endpoints)
//	if err != nil {
//	    return err
//	}
//
//	pool, err := proxypool.NewPool(proxypool.Config{
//	    Endpoints: endpoints,
//	    Strategy:  strategies.NewRandom(cfg.Proxy.Seed),
//	})
//	if err != nil {
//	    return err
//	}
//
//	ep, err := pool.Pick()
//	if err != nil {
//	    return err
//	}
//	client := &http.Client{Transport: pool.Transport(ep)}
//
// # Transports
//
// Each endpoint gets its own *http.Transport so connection pools are
// never shared across proxies. Transports are built lazily and cached
// for the life of the pool; CloseIdleConnections releases them during
// shutdown.
//
// # Thread Safety
//
// Pool, PickStats, and both shipped strategies are safe for concurrent
// use.
package proxypool
