package registry

import (
	"context"
	"time"

	"github.com/cozy-creator/model-server/internal/db/models"
	"github.com/cozy-creator/model-server/internal/db/repository"
	"github.com/cozy-creator/model-server/internal/types"
)

// Store is the persistent side of the registry.
type Store interface {
	ListModels(ctx context.Context) ([]types.ModelDescriptor, error)
	InsertModels(ctx context.Context, descriptors []types.ModelDescriptor) (int64, error)
}

// RepositoryStore adapts the models repository to Store and bounds every
// call with a timeout.
type RepositoryStore struct {
	repo    repository.IModelRepository
	timeout time.Duration
}

func NewRepositoryStore(repo repository.IModelRepository, timeout time.Duration) *RepositoryStore {
	return &RepositoryStore{repo: repo, timeout: timeout}
}

func (s *RepositoryStore) ListModels(ctx context.Context) ([]types.ModelDescriptor, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	specs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	descriptors := make([]types.ModelDescriptor, len(specs))
	for i, spec := range specs {
		descriptors[i] = spec.Descriptor()
	}

	return descriptors, nil
}

func (s *RepositoryStore) InsertModels(ctx context.Context, descriptors []types.ModelDescriptor) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	specs := make([]models.ModelSpec, len(descriptors))
	for i, d := range descriptors {
		specs[i] = models.FromDescriptor(d)
	}

	return s.repo.InsertBatch(ctx, specs)
}

func (s *RepositoryStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.timeout)
}
