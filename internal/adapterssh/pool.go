// SPDX-License-Identifier: MPL-2.0

package adapterssh

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/ssh"

	"github.com/xec-sh/xec/internal/xecore"
)

// defaultKeepAlive is the interval pooled connections are pinged on when
// xecore.SSHOptions.KeepAlive is unset.
const defaultKeepAlive = 30 * time.Second

// defaultPoolTTL is how long a connection may sit idle (no acquire) before
// getOrDial treats it as stale and redials, per spec.md:101 ("the pool
// returns an existing open connection if its last-used time is within the
// TTL, else establishes a new one").
const defaultPoolTTL = 5 * time.Minute

// defaultMaxConcurrency is the per-key cap on concurrent sessions sharing
// one *ssh.Client, per spec.md:101 ("the pool enforces a per-key maximum
// concurrency; excess requests queue").
const defaultMaxConcurrency = 4

// pooledConn wraps an *ssh.Client with the bookkeeping the pool needs to
// detect a dead connection, redial exactly once, share the connection by
// refcount, and cap per-key concurrency.
type pooledConn struct {
	client *ssh.Client
	key    string

	mu       sync.Mutex
	refcount int32
	lastUsed time.Time

	// sem is a buffered channel of size maxPerKey: acquire blocks (queues)
	// once maxPerKey sessions are already running against this connection.
	sem chan struct{}

	stopKeepAlive chan struct{}
}

// acquire reserves one of the connection's per-key concurrency slots,
// queueing if all are in use, and bumps the refcount so the connection is
// known to be in use while the caller holds it. Call release when done.
func (c *pooledConn) acquire(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.mu.Lock()
	c.refcount++
	c.lastUsed = time.Now()
	c.mu.Unlock()
	return nil
}

// release returns the connection's concurrency slot and drops the
// refcount. Must be called exactly once per successful acquire.
func (c *pooledConn) release() {
	c.mu.Lock()
	c.refcount--
	c.lastUsed = time.Now()
	c.mu.Unlock()
	<-c.sem
}

// idleSince reports how long the connection has gone unused, for TTL
// comparisons in getOrDial.
func (c *pooledConn) idleSince() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastUsed)
}

// inUse reports whether any caller currently holds a reference, so
// getOrDial does not evict (and close the client under) an active session
// merely because its last-used time is older than the TTL.
func (c *pooledConn) inUse() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refcount > 0
}

// pool caches one *ssh.Client per distinct (host, port, username,
// fingerprint) tuple, the same deterministic-key-over-a-map pattern as
// opal-lang-opal's SessionPool, adapted from an arbitrary-params map to
// xecore.SSHOptions's fixed field set.
type pool struct {
	mu    sync.Mutex
	conns map[string]*pooledConn

	logger    *log.Logger
	ttl       time.Duration
	maxPerKey int
}

// PoolOption configures package-level pool defaults (TTL, max per-key
// concurrency), following the teacher's BaseCLIEngineOption functional-
// option pattern.
type PoolOption func(*pool)

// WithPoolTTL overrides the default idle TTL a pooled connection is kept
// alive for between acquires.
func WithPoolTTL(d time.Duration) PoolOption { return func(p *pool) { p.ttl = d } }

// WithMaxConcurrency overrides the default per-key maximum number of
// concurrent sessions sharing one pooled connection.
func WithMaxConcurrency(n int) PoolOption { return func(p *pool) { p.maxPerKey = n } }

func newPool(logger *log.Logger, opts ...PoolOption) *pool {
	p := &pool{
		conns:     make(map[string]*pooledConn),
		logger:    logger,
		ttl:       defaultPoolTTL,
		maxPerKey: defaultMaxConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func connKey(opts xecore.SSHOptions) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s:%d:%s:%s", opts.Host, effectivePort(opts), opts.Username, opts.Fingerprint)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func effectivePort(opts xecore.SSHOptions) int {
	if opts.Port == 0 {
		return 22
	}
	return opts.Port
}

// getOrDial returns a pooled connection for opts, reusing the cached
// connection when its last-used time is within the pool's TTL (spec.md:101)
// or a caller still holds it, and redialing when it is stale, dead, or
// absent.
func (p *pool) getOrDial(ctx context.Context, opts xecore.SSHOptions) (*pooledConn, error) {
	key := connKey(opts)

	p.mu.Lock()
	c, ok := p.conns[key]
	p.mu.Unlock()

	if ok {
		if (c.inUse() || c.idleSince() < p.ttl) && p.ping(c) {
			return c, nil
		}
		p.evict(key)
	}

	client, err := dial(ctx, opts)
	if err != nil {
		return nil, err
	}

	c = &pooledConn{
		client:        client,
		key:           key,
		lastUsed:      time.Now(),
		sem:           make(chan struct{}, p.maxPerKey),
		stopKeepAlive: make(chan struct{}),
	}
	p.mu.Lock()
	p.conns[key] = c
	p.mu.Unlock()

	interval := opts.KeepAlive
	if interval <= 0 {
		interval = defaultKeepAlive
	}
	go p.keepAlive(c, interval)

	return c, nil
}

func (p *pool) ping(c *pooledConn) bool {
	_, _, err := c.client.SendRequest("keepalive@xec", true, nil)
	return err == nil
}

func (p *pool) evict(key string) {
	p.mu.Lock()
	c, ok := p.conns[key]
	if ok {
		delete(p.conns, key)
	}
	p.mu.Unlock()
	if ok {
		close(c.stopKeepAlive)
		_ = c.client.Close()
	}
}

func (p *pool) keepAlive(c *pooledConn, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if !p.ping(c) {
				p.logger.Warn("ssh keepalive failed, evicting connection", "key", c.key)
				p.evict(c.key)
				return
			}
		case <-c.stopKeepAlive:
			return
		}
	}
}

// closeAll closes every pooled connection. Safe to call once at adapter
// disposal time.
func (p *pool) closeAll() {
	p.mu.Lock()
	conns := p.conns
	p.conns = make(map[string]*pooledConn)
	p.mu.Unlock()

	for _, c := range conns {
		close(c.stopKeepAlive)
		_ = c.client.Close()
	}
}

func dial(ctx context.Context, opts xecore.SSHOptions) (*ssh.Client, error) {
	authMethods, err := authMethodsFor(opts.Auth)
	if err != nil {
		return nil, err
	}

	hostKeyCallback, err := hostKeyCallbackFor(opts)
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User:            opts.Username,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         15 * time.Second,
	}

	addr := net.JoinHostPort(opts.Host, fmt.Sprintf("%d", effectivePort(opts)))

	type dialResult struct {
		client *ssh.Client
		err    error
	}
	resultCh := make(chan dialResult, 1)
	go func() {
		client, err := ssh.Dial("tcp", addr, config)
		resultCh <- dialResult{client, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-resultCh:
		return r.client, r.err
	}
}
