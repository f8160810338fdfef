package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cozy-creator/model-server/internal/types"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errStoreDown = errors.New("store down")

type fakeStore struct {
	mu         sync.Mutex
	rows       map[string]types.ModelDescriptor
	failList   bool
	failInsert bool
	listGate   chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]types.ModelDescriptor{}}
}

func (s *fakeStore) ListModels(ctx context.Context) ([]types.ModelDescriptor, error) {
	s.mu.Lock()
	gate := s.listGate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failList {
		return nil, errStoreDown
	}

	out := make([]types.ModelDescriptor, 0, len(s.rows))
	for _, d := range s.rows {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) InsertModels(_ context.Context, descriptors []types.ModelDescriptor) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failInsert {
		return 0, errStoreDown
	}
	for _, d := range descriptors {
		if _, ok := s.rows[d.ID]; ok {
			return 0, fmt.Errorf("duplicate %s", d.ID)
		}
	}
	for _, d := range descriptors {
		s.rows[d.ID] = d
	}
	return int64(len(descriptors)), nil
}

func (s *fakeStore) set(fn func(s *fakeStore)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func batch(prefix string, n int) []types.ModelDescriptor {
	out := make([]types.ModelDescriptor, n)
	for i := range out {
		out[i] = types.ModelDescriptor{ID: fmt.Sprintf("%s-%d", prefix, i), Type: prefix}
	}
	return out
}

func TestAddBatchDisjointUnion(t *testing.T) {
	ctx := context.Background()
	cache := New(newFakeStore(), WithLogger(zaptest.NewLogger(t)))

	var want []types.ModelDescriptor
	var total int64
	for i, size := range []int{1, 3, 5, 2} {
		b := batch(fmt.Sprintf("b%d", i), size)
		n, err := cache.AddBatch(ctx, b)
		require.NoError(t, err)
		assert.EqualValues(t, size, n)

		want = append(want, b...)
		total += n
	}

	got := cache.List()
	assert.Len(t, got, int(total))
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(func(a, b types.ModelDescriptor) bool { return a.ID < b.ID })); diff != "" {
		t.Errorf("unexpected registry contents (-want +got):\n%s", diff)
	}
}

func TestAddBatchEmptySkipsStore(t *testing.T) {
	store := newFakeStore()
	store.failInsert = true
	cache := New(store)

	n, err := cache.AddBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFailedAddBatchLeavesListUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cache := New(store)

	_, err := cache.AddBatch(ctx, batch("seed", 2))
	require.NoError(t, err)
	before := cache.List()

	store.set(func(s *fakeStore) { s.failInsert = true })
	n, err := cache.AddBatch(ctx, batch("new", 3))

	require.Error(t, err)
	assert.Zero(t, n)
	assert.True(t, IsStorageError(err))
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, before, cache.List())
}

func TestFailedRefreshKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cache := New(store)

	_, err := cache.AddBatch(ctx, batch("seed", 2))
	require.NoError(t, err)
	before := cache.List()

	store.set(func(s *fakeStore) {
		s.rows["late"] = types.ModelDescriptor{ID: "late", Type: "onnx"}
		s.failList = true
	})

	err = cache.Refresh(ctx)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "refresh", se.Op)
	assert.Equal(t, before, cache.List())
}

func TestInsertThenRefreshFailureIsStale(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cache := New(store)

	require.NoError(t, cache.Refresh(ctx))
	store.set(func(s *fakeStore) { s.failList = true })

	n, err := cache.AddBatch(ctx, batch("m", 2))
	assert.EqualValues(t, 2, n)
	assert.True(t, IsStale(err))
	assert.Empty(t, cache.List())

	store.set(func(s *fakeStore) { s.failList = false })
	require.NoError(t, cache.Refresh(ctx))
	assert.Len(t, cache.List(), 2)
}

func TestListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	cache := New(newFakeStore())

	_, err := cache.AddBatch(ctx, batch("m", 2))
	require.NoError(t, err)

	snapshot := cache.List()
	snapshot[0].ID = "mutated"

	assert.Equal(t, "m-0", cache.List()[0].ID)
}

func TestListDoesNotWaitForStore(t *testing.T) {
	store := newFakeStore()
	cache := New(store)
	require.NoError(t, cache.Refresh(context.Background()))

	gate := make(chan struct{})
	store.set(func(s *fakeStore) { s.listGate = gate })

	done := make(chan error, 1)
	go func() { done <- cache.Refresh(context.Background()) }()

	listed := make(chan []types.ModelDescriptor, 1)
	go func() { listed <- cache.List() }()

	select {
	case got := <-listed:
		assert.Empty(t, got)
	case <-time.After(time.Second):
		t.Fatal("List blocked behind a store round trip")
	}

	close(gate)
	require.NoError(t, <-done)
}

func TestConcurrentReadersSeeWholeBatches(t *testing.T) {
	const (
		batches   = 50
		batchSize = 8
		readers   = 8
	)

	ctx := context.Background()
	cache := New(newFakeStore())

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errc := make(chan error, readers)

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}

				counts := map[string]int{}
				for _, d := range cache.List() {
					counts[d.Type]++
				}
				for typ, c := range counts {
					if c != batchSize {
						errc <- fmt.Errorf("torn snapshot: %d of %d models from %s", c, batchSize, typ)
						return
					}
				}
			}
		}()
	}

	for i := 0; i < batches; i++ {
		_, err := cache.AddBatch(ctx, batch(fmt.Sprintf("gen%02d", i), batchSize))
		require.NoError(t, err)
	}

	close(stop)
	wg.Wait()
	close(errc)

	for err := range errc {
		t.Error(err)
	}
	assert.Len(t, cache.List(), batches*batchSize)
}
