package listing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/kinoteka/pkg/catalog"
)

func waitIdle[T any](t *testing.T, f *Fetcher[T]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.Wait(ctx))
}

func TestFetcher_AppliesResult(t *testing.T) {
	src := newFakeSource()
	f := NewFetcher[catalog.Movie](context.Background(), src, FetcherOptions{})
	defer f.Close()

	assert.True(t, f.Request("page=1", false))
	assert.True(t, f.Snapshot().Loading)
	waitIdle(t, f)

	snap := f.Snapshot()
	assert.False(t, snap.Loading)
	assert.True(t, snap.Loaded)
	assert.NoError(t, snap.Err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "page=1", snap.Items[0].Title)
	assert.Equal(t, 3, snap.Pagination.TotalPages)
	assert.Equal(t, "page=1", snap.Query)
}

func TestFetcher_LatestRequestWins(t *testing.T) {
	src := newFakeSource()
	src.ignoreCancel = true
	releaseA := src.gate("a")
	releaseB := src.gate("b")

	f := NewFetcher[catalog.Movie](context.Background(), src, FetcherOptions{})
	defer f.Close()

	require.True(t, f.Request("a", false))
	require.True(t, f.Request("b", false))

	releaseB()
	waitIdle(t, f)
	require.Equal(t, "b", f.Snapshot().Items[0].Title)

	// a answers after b
	releaseA()
	require.Eventually(t, func() bool { return src.Returned() == 2 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return f.Snapshot().Items[0].Title != "b" }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestFetcher_NewRequestCancelsPrevious(t *testing.T) {
	src := newFakeSource()
	src.gate("a")

	f := NewFetcher[catalog.Movie](context.Background(), src, FetcherOptions{})
	defer f.Close()

	f.Request("a", false)
	f.Request("b", false)
	waitIdle(t, f)

	require.Eventually(t, func() bool { return len(src.Cancelled()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"a"}, src.Cancelled())
	assert.Equal(t, "b", f.Snapshot().Items[0].Title)
	assert.NoError(t, f.Snapshot().Err)
}

func TestFetcher_SkipsIdenticalRequest(t *testing.T) {
	src := newFakeSource()
	f := NewFetcher[catalog.Movie](context.Background(), src, FetcherOptions{})
	defer f.Close()

	assert.True(t, f.Request("q", false))
	assert.False(t, f.Request("q", false), "in flight")
	waitIdle(t, f)
	assert.False(t, f.Request("q", false), "already loaded")
	assert.True(t, f.Request("q", true), "forced")
	waitIdle(t, f)

	assert.Equal(t, 2, f.Requests())
	assert.Len(t, src.Queries(), 2)
}

func TestFetcher_ErrorKeepsPreviousItems(t *testing.T) {
	src := newFakeSource()
	f := NewFetcher[catalog.Movie](context.Background(), src, FetcherOptions{})
	defer f.Close()

	f.Request("page=1", false)
	waitIdle(t, f)

	src.setFailOn("page=2")
	f.Request("page=2", false)
	waitIdle(t, f)

	snap := f.Snapshot()
	assert.ErrorIs(t, snap.Err, errBackend)
	assert.True(t, snap.Loaded)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "page=1", snap.Items[0].Title)
	assert.NotEmpty(t, snap.Message())

	f.DismissError()
	assert.NoError(t, f.Snapshot().Err)
	assert.Len(t, f.Snapshot().Items, 1)

	// the failed query is not treated as loaded
	assert.True(t, f.Request("page=2", false))
	waitIdle(t, f)
}

func TestFetcher_ErrorWithoutPriorLoad(t *testing.T) {
	src := newFakeSource()
	src.setFailOn("page")
	f := NewFetcher[catalog.Movie](context.Background(), src, FetcherOptions{})
	defer f.Close()

	f.Request("page=1", false)
	waitIdle(t, f)

	snap := f.Snapshot()
	assert.Error(t, snap.Err)
	assert.False(t, snap.Loaded)
	assert.NotNil(t, snap.Items)
	assert.Empty(t, snap.Items)
}

func TestFetcher_Timeout(t *testing.T) {
	src := newFakeSource()
	src.gate("slow")
	f := NewFetcher[catalog.Movie](context.Background(), src, FetcherOptions{Timeout: 10 * time.Millisecond})
	defer f.Close()

	f.Request("slow", false)
	waitIdle(t, f)

	err := f.Snapshot().Err
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "Serwer nie odpowiedział na czas.", Message(err))
}

func TestFetcher_CloseDiscardsResults(t *testing.T) {
	src := newFakeSource()
	src.ignoreCancel = true
	release := src.gate("a")

	var changes atomic.Int32
	f := NewFetcher[catalog.Movie](context.Background(), src, FetcherOptions{
		OnChange: func() { changes.Add(1) },
	})

	f.Request("a", false)
	f.Close()
	waitIdle(t, f)

	release()
	require.Eventually(t, func() bool { return src.Returned() == 1 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return f.Snapshot().Loaded }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Zero(t, changes.Load())
	assert.False(t, f.Request("b", false))
}

func TestFetcher_ParentContextCancelled(t *testing.T) {
	src := newFakeSource()
	src.gate("a")
	ctx, cancel := context.WithCancel(context.Background())
	f := NewFetcher[catalog.Movie](ctx, src, FetcherOptions{})

	f.Request("a", false)
	cancel()
	waitIdle(t, f)

	assert.False(t, f.Snapshot().Loaded)
	assert.NoError(t, f.Snapshot().Err)
	assert.False(t, f.Request("b", false))
}

func TestFetcher_OnChangeAndRefresh(t *testing.T) {
	src := newFakeSource()
	var changes atomic.Int32
	f := NewFetcher[catalog.Movie](context.Background(), src, FetcherOptions{
		OnChange: func() { changes.Add(1) },
	})
	defer f.Close()

	assert.False(t, f.Refresh(), "nothing to refresh yet")

	f.Request("q", false)
	waitIdle(t, f)
	assert.True(t, f.Refresh())
	waitIdle(t, f)

	assert.EqualValues(t, 2, changes.Load())
	assert.Equal(t, []string{"q", "q"}, src.Queries())
}

func TestSourceFunc(t *testing.T) {
	src := SourceFunc[catalog.Person](func(_ context.Context, query string) (*catalog.Page[catalog.Person], error) {
		return &catalog.Page[catalog.Person]{Items: []catalog.Person{{Name: query}}}, nil
	})
	f := NewFetcher[catalog.Person](context.Background(), src, FetcherOptions{})
	defer f.Close()

	f.Request("name=Janda", false)
	waitIdle(t, f)
	assert.Equal(t, "name=Janda", f.Snapshot().Items[0].Name)
}
