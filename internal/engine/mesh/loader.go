package mesh

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/spin/internal/logger"
)

// Source reads raw asset bytes; *assets.Manager satisfies it.
type Source interface {
	Load(name string) ([]byte, error)
}

// Pending is an in-flight load. It is resolved exactly once.
type Pending struct {
	path string
	done chan struct{}
	mesh *Mesh
	err  error
}

// Path returns the requested asset path.
func (p *Pending) Path() string { return p.path }

// TryTake reports the result if the load has finished. It never blocks;
// done is false while the load is still running. Once finished, every call
// returns the same result.
func (p *Pending) TryTake() (m *Mesh, done bool, err error) {
	select {
	case <-p.done:
		return p.mesh, true, p.err
	default:
		return nil, false, nil
	}
}

// Wait blocks until the load finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) (*Mesh, error) {
	select {
	case <-p.done:
		return p.mesh, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pending) resolve(m *Mesh, err error) {
	p.mesh, p.err = m, err
	close(p.done)
}

// Ready returns an already resolved Pending, e.g. for procedural meshes.
func Ready(path string, m *Mesh) *Pending {
	p := &Pending{path: path, done: make(chan struct{})}
	p.resolve(m, nil)
	return p
}

// Loader parses meshes in the background. Concurrent requests for the same
// path share one load.
type Loader struct {
	src Source

	mu      sync.Mutex
	pending map[string]*Pending
}

// NewLoader returns a loader reading from src.
func NewLoader(src Source) *Loader {
	return &Loader{src: src, pending: make(map[string]*Pending)}
}

// Load starts loading path and returns immediately.
func (l *Loader) Load(path string) *Pending {
	l.mu.Lock()
	if p, ok := l.pending[path]; ok {
		l.mu.Unlock()
		return p
	}
	p := &Pending{path: path, done: make(chan struct{})}
	l.pending[path] = p
	l.mu.Unlock()

	go func() {
		p.resolve(l.LoadSync(path))
	}()
	return p
}

// LoadSync reads and parses path on the calling goroutine.
func (l *Loader) LoadSync(path string) (*Mesh, error) {
	data, err := l.src.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading mesh %s: %w", path, err)
	}
	m, err := ParseOBJ(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing mesh %s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = path
	}
	logger.Debug("mesh loaded",
		zap.String("path", path),
		zap.Int("vertices", m.VertexCount()),
		zap.Uint64("fingerprint", m.Fingerprint()))
	return m, nil
}

// Forget drops the cached load for path so the next Load re-reads it.
func (l *Loader) Forget(path string) {
	l.mu.Lock()
	delete(l.pending, path)
	l.mu.Unlock()
}

// Batch loads a set of meshes concurrently. The first failure cancels the
// loads that have not started yet.
type Batch struct {
	paths []string
	done  chan struct{}
	err   error

	mu     sync.Mutex
	meshes map[string]*Mesh
}

// LoadBatch starts loading paths with at most limit reads in flight.
// A non-positive limit means no limit.
func (l *Loader) LoadBatch(ctx context.Context, paths []string, limit int) *Batch {
	b := &Batch{
		paths:  append([]string(nil), paths...),
		done:   make(chan struct{}),
		meshes: make(map[string]*Mesh, len(paths)),
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	go func() {
		for _, path := range b.paths {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				m, err := l.Load(path).Wait(gctx)
				if err != nil {
					return err
				}
				b.mu.Lock()
				b.meshes[path] = m
				b.mu.Unlock()
				return nil
			})
		}
		b.err = g.Wait()
		close(b.done)
	}()
	return b
}

// Poll reports whether the batch has finished and, if so, its error.
// It never blocks.
func (b *Batch) Poll() (done bool, err error) {
	select {
	case <-b.done:
		return true, b.err
	default:
		return false, nil
	}
}

// Progress returns how many meshes have loaded so far.
func (b *Batch) Progress() (loaded, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.meshes), len(b.paths)
}

// Get returns a loaded mesh.
func (b *Batch) Get(path string) (*Mesh, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.meshes[path]
	return m, ok
}
