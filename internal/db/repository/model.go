package repository

import (
	"context"
	"fmt"

	"github.com/cozy-creator/model-server/internal/db/models"
	"github.com/uptrace/bun"
)

type IModelRepository interface {
	Repository[models.ModelSpec]
	WithTx(tx *bun.Tx) IModelRepository
	WithDB(db *bun.DB) IModelRepository
}

type ModelRepository struct {
	db bun.IDB
}

func NewModelRepository(db *bun.DB) IModelRepository {
	return &ModelRepository{db: db}
}

func (r *ModelRepository) ListAll(ctx context.Context) ([]models.ModelSpec, error) {
	specs := make([]models.ModelSpec, 0)
	if err := r.db.NewSelect().Model(&specs).Order("model_id ASC").Scan(ctx); err != nil {
		return nil, err
	}

	return specs, nil
}

// InsertBatch writes all rows with one INSERT statement. There is no conflict
// clause: a duplicate model_id fails the whole batch with ErrDuplicateModel.
func (r *ModelRepository) InsertBatch(ctx context.Context, specs []models.ModelSpec) (int64, error) {
	if len(specs) == 0 {
		return 0, nil
	}

	res, err := r.db.NewInsert().Model(&specs).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %w", ErrDuplicateModel, err)
		}
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return int64(len(specs)), nil
	}

	return n, nil
}

func (r *ModelRepository) WithTx(tx *bun.Tx) IModelRepository {
	return &ModelRepository{db: tx}
}

func (r *ModelRepository) WithDB(db *bun.DB) IModelRepository {
	return &ModelRepository{db: db}
}
