package registry

import (
	"context"
	"sync"

	"github.com/cozy-creator/model-server/internal/types"
	"go.uber.org/zap"
)

// Cache is the in-memory mirror of the models table and the only source for
// list reads. The mutex guards copy-in and copy-out only; store round trips
// run outside it.
type Cache struct {
	store  Store
	logger *zap.Logger

	mu     sync.Mutex
	models []types.ModelDescriptor

	// writeMu orders refreshes so a slow scan can not replace a newer one.
	writeMu sync.Mutex
}

type Option func(*Cache)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		logger: zap.NewNop(),
		models: []types.ModelDescriptor{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Refresh replaces the cache with a full scan of the store. On error the
// cache keeps its previous contents.
func (c *Cache) Refresh(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.refresh(ctx)
}

func (c *Cache) refresh(ctx context.Context) error {
	descriptors, err := c.store.ListModels(ctx)
	if err != nil {
		return &StorageError{Op: "refresh", Err: err}
	}

	c.mu.Lock()
	c.models = descriptors
	c.mu.Unlock()

	c.logger.Debug("registry refreshed", zap.Int("models", len(descriptors)))
	return nil
}

// AddBatch inserts all descriptors in one statement and then refreshes.
// When the insert succeeds but the refresh fails, the inserted count is
// returned along with a *StaleError.
func (c *Cache) AddBatch(ctx context.Context, descriptors []types.ModelDescriptor) (int64, error) {
	if len(descriptors) == 0 {
		return 0, nil
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	n, err := c.store.InsertModels(ctx, descriptors)
	if err != nil {
		return 0, &StorageError{Op: "insert", Err: err}
	}

	if err := c.refresh(ctx); err != nil {
		return n, &StaleError{Inserted: n, Err: err}
	}

	return n, nil
}

// List returns a snapshot. Callers own the returned slice.
func (c *Cache) List() []types.ModelDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]types.ModelDescriptor, len(c.models))
	copy(snapshot, c.models)
	return snapshot
}
