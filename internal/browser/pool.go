package browser

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// ErrAcquireTimeout is returned when all pooled contexts stay busy past
// the acquire deadline. It is retryable: a concurrent scan finishing
// frees a slot.
var ErrAcquireTimeout = errors.New("timed out waiting for a free browser context")

// PoolConfig sizes the warm pool.
type PoolConfig struct {
	Size           int
	AcquireTimeout time.Duration
}

// DefaultPoolConfig returns the standard pool sizing.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Size:           3,
		AcquireTimeout: 30 * time.Second,
	}
}

type pooledContext struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Pool keeps a fixed set of pre-warmed browser contexts over one shared
// allocator, so a scan pays tab-open cost instead of Chrome-start cost.
type Pool struct {
	cfg         PoolConfig
	allocCtx    context.Context
	allocCancel context.CancelFunc
	available   chan *pooledContext

	mu     sync.Mutex
	closed bool
}

// NewPool starts Chrome and warms cfg.Size browser contexts. Each
// context is driven to about:blank so renderer startup cost is paid
// here, not on the first scan.
func NewPool(browserCfg Config, cfg PoolConfig) (*Pool, error) {
	if cfg.Size <= 0 {
		cfg.Size = DefaultPoolConfig().Size
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = DefaultPoolConfig().AcquireTimeout
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(browserCfg)...)

	p := &Pool{
		cfg:         cfg,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		available:   make(chan *pooledContext, cfg.Size),
	}

	for i := 0; i < cfg.Size; i++ {
		pc, err := p.newContext()
		if err != nil {
			p.Close()
			return nil, err
		}
		p.available <- pc
	}

	log.Info().Int("size", cfg.Size).Msg("Browser pool warmed")
	return p, nil
}

func (p *Pool) newContext() (*pooledContext, error) {
	ctx, cancel := chromedp.NewContext(p.allocCtx)
	if err := chromedp.Run(ctx, chromedp.Navigate("about:blank")); err != nil {
		cancel()
		return nil, err
	}
	return &pooledContext{ctx: ctx, cancel: cancel}, nil
}

// Acquire hands out a warm context wrapped in a Session. The session's
// Close returns the context to the pool after scrubbing its state; a
// dead context is replaced rather than recycled.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errors.New("browser pool is closed")
	}
	p.mu.Unlock()

	timer := time.NewTimer(p.cfg.AcquireTimeout)
	defer timer.Stop()

	select {
	case pc := <-p.available:
		return &Session{
			ctx:     pc.ctx,
			release: func() { p.release(pc) },
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrAcquireTimeout
	}
}

// release scrubs a context and returns it to the pool. Cookies are
// cleared so an auth session injected by one scan never leaks into the
// next; a context that fails scrubbing is torn down and replaced.
func (p *Pool) release(pc *pooledContext) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		pc.cancel()
		return
	}

	scrubCtx, cancel := context.WithTimeout(pc.ctx, 10*time.Second)
	err := chromedp.Run(scrubCtx,
		network.ClearBrowserCookies(),
		chromedp.Navigate("about:blank"),
	)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("Pooled context failed cleanup, replacing it")
		pc.cancel()
		fresh, err := p.newContext()
		if err != nil {
			log.Error().Err(err).Msg("Failed to replace pooled browser context")
			return
		}
		pc = fresh
	}

	select {
	case p.available <- pc:
	default:
		// Pool already full (double release); drop the extra context.
		pc.cancel()
	}
}

// Close tears down all contexts and the shared Chrome process. Sessions
// still in flight keep working until their own Close.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	for {
		select {
		case pc := <-p.available:
			pc.cancel()
		default:
			p.allocCancel()
			log.Debug().Msg("Browser pool closed")
			return
		}
	}
}
