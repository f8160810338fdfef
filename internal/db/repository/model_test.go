package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/cozy-creator/model-server/internal/db"
	"github.com/cozy-creator/model-server/internal/db/drivers"
	"github.com/cozy-creator/model-server/internal/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	driver, err := drivers.NewSQLiteDriver(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { driver.Close() })

	require.NoError(t, db.EnsureSchema(context.Background(), driver.GetDB()))
	return driver.GetDB()
}

func TestModelRepositoryInsertAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewModelRepository(newTestDB(t))

	n, err := repo.InsertBatch(ctx, []models.ModelSpec{
		{ModelID: "m2", ModelType: "onnx"},
		{ModelID: "m1", ModelType: "onnx"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	specs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.ModelSpec{
		{ModelID: "m1", ModelType: "onnx"},
		{ModelID: "m2", ModelType: "onnx"},
	}, specs)
}

func TestModelRepositoryEmptyBatch(t *testing.T) {
	repo := NewModelRepository(newTestDB(t))

	n, err := repo.InsertBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	specs, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, specs)
}

func TestModelRepositoryDuplicateFailsWholeBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewModelRepository(newTestDB(t))

	_, err := repo.InsertBatch(ctx, []models.ModelSpec{{ModelID: "m1", ModelType: "onnx"}})
	require.NoError(t, err)

	_, err = repo.InsertBatch(ctx, []models.ModelSpec{
		{ModelID: "m3", ModelType: "gguf"},
		{ModelID: "m1", ModelType: "gguf"},
	})
	require.ErrorIs(t, err, ErrDuplicateModel)

	specs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.ModelSpec{{ModelID: "m1", ModelType: "onnx"}}, specs)
}

func TestModelRepositoryWithTxRollback(t *testing.T) {
	ctx := context.Background()
	bunDB := newTestDB(t)
	repo := NewModelRepository(bunDB)

	tx, err := bunDB.BeginTx(ctx, nil)
	require.NoError(t, err)

	_, err = repo.WithTx(&tx).InsertBatch(ctx, []models.ModelSpec{{ModelID: "m1", ModelType: "onnx"}})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	specs, err := repo.WithDB(bunDB).ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, specs)
}
