package generation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Generator runs one loaded model.
type Generator interface {
	Generate(ctx context.Context, input string, params Parameters) (string, error)
}

// Loader turns a model reference into a ready Generator. Loads are slow.
type Loader interface {
	Load(ctx context.Context, ref ModelReference, task Task) (Generator, error)
}

// ModelResolver picks the checkpoint for an operation.
type ModelResolver interface {
	Resolve(op Operation) (ModelReference, error)
}

// Pipeline is a loaded model together with the reference it was loaded from.
type Pipeline struct {
	Reference ModelReference
	Generator Generator
}

// ModelCache loads at most one pipeline per operation and keeps it for the
// life of the process. Failed loads are not remembered.
type ModelCache struct {
	resolver ModelResolver
	loader   Loader
	logger   *slog.Logger

	mu      sync.RWMutex
	entries map[Operation]*Pipeline
	group   singleflight.Group
}

// NewModelCache is a wire provider for the pipeline cache.
func NewModelCache(resolver ModelResolver, loader Loader, logger *slog.Logger) *ModelCache {
	return &ModelCache{
		resolver: resolver,
		loader:   loader,
		logger:   logger.With("component", "generation.cache"),
		entries:  make(map[Operation]*Pipeline),
	}
}

// Get returns the pipeline for op, loading it on first use. Concurrent
// callers for the same operation share a single load; a caller whose context
// ends stops waiting but the load itself runs to completion.
func (c *ModelCache) Get(ctx context.Context, op Operation) (*Pipeline, error) {
	if p := c.lookup(op); p != nil {
		return p, nil
	}

	ch := c.group.DoChan(string(op), func() (any, error) {
		if p := c.lookup(op); p != nil {
			return p, nil
		}
		return c.load(context.WithoutCancel(ctx), op)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Pipeline), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Loaded reports the references of every pipeline loaded so far.
func (c *ModelCache) Loaded() map[Operation]ModelReference {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[Operation]ModelReference, len(c.entries))
	for op, p := range c.entries {
		out[op] = p.Reference
	}
	return out
}

func (c *ModelCache) lookup(op Operation) *Pipeline {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[op]
}

func (c *ModelCache) load(ctx context.Context, op Operation) (*Pipeline, error) {
	ref, err := c.resolver.Resolve(op)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	gen, err := c.loader.Load(ctx, ref, op.Task())
	if err != nil {
		c.logger.Error("model load failed", "operation", op, "model", ref.Path, "error", err)
		return nil, fmt.Errorf("load %s model %q: %w", op, ref.Path, err)
	}
	p := &Pipeline{Reference: ref, Generator: gen}

	c.mu.Lock()
	c.entries[op] = p
	c.mu.Unlock()

	c.logger.Info("model loaded", "operation", op, "model", ref.Path, "source", ref.Source, "duration_ms", time.Since(start).Milliseconds())
	return p, nil
}
