package sandbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/2926295173/never-jscore/internal/logging"
)

var (
	ErrPoolClosed = errors.New("sandbox pool is closed")
	ErrTimeout    = errors.New("sandbox acquisition timeout")
)

// Pool manages a set of reusable runtimes.
type Pool struct {
	config    Config
	log       *logging.Logger
	sandboxes chan *Runtime
	size      int
	mu        sync.RWMutex
	closed    bool
}

// NewPool creates a pool of pre-warmed runtimes.
func NewPool(config Config, size int, log *logging.Logger) (*Pool, error) {
	if size <= 0 {
		size = 4
	}
	if log == nil {
		log = logging.Nop()
	}

	pool := &Pool{
		config:    config,
		log:       log,
		sandboxes: make(chan *Runtime, size),
		size:      size,
	}

	for i := 0; i < size; i++ {
		runtime, err := New(config, log)
		if err != nil {
			pool.Close()
			return nil, err
		}
		pool.sandboxes <- runtime
	}

	return pool, nil
}

// Acquire gets a runtime from the pool with timeout.
func (p *Pool) Acquire(ctx context.Context) (*Runtime, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	select {
	case runtime := <-p.sandboxes:
		return runtime, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		return nil, ErrTimeout
	}
}

// Release returns a runtime to the pool after resetting it.
func (p *Pool) Release(runtime *Runtime) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return runtime.Close()
	}

	if err := runtime.Reset(); err != nil {
		runtime.Close()
		if replacement, nerr := New(p.config, p.log); nerr == nil {
			p.sandboxes <- replacement
		}
		return err
	}

	select {
	case p.sandboxes <- runtime:
		return nil
	default:
		return runtime.Close()
	}
}

// Execute runs a script on a pooled runtime.
func (p *Pool) Execute(ctx context.Context, script string) (*Result, error) {
	runtime, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(runtime)

	return runtime.Execute(ctx, script)
}

// Close closes the pool and every runtime in it.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	close(p.sandboxes)

	for runtime := range p.sandboxes {
		runtime.Close()
	}

	return nil
}

// Stats returns pool statistics.
func (p *Pool) Stats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"size":      p.size,
		"available": len(p.sandboxes),
		"in_use":    p.size - len(p.sandboxes),
		"closed":    p.closed,
	}
}
