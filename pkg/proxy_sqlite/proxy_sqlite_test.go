package proxy_sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProxy(t *testing.T) *Proxy {
	t.Helper()
	p, err := NewProxy(context.Background(), filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestLoadUnknown(t *testing.T) {
	p := newTestProxy(t)
	items, err := p.Load("missing")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSaveLoad(t *testing.T) {
	p := newTestProxy(t)
	require.NoError(t, p.Save("a", []string{"10", "20"}))
	items, err := p.Load("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20"}, items)

	require.NoError(t, p.Save("a", []string{"10"}))
	items, err = p.Load("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"10"}, items)

	require.NoError(t, p.Save("b", nil))
	items, err = p.Load("b")
	require.NoError(t, err)
	assert.Equal(t, []string{}, items)

	names, err := p.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestHistoryAndDelete(t *testing.T) {
	p := newTestProxy(t)
	_, err := p.Record("a", "push", "10", 1)
	require.NoError(t, err)
	_, err = p.Record("b", "push", "x", 1)
	require.NoError(t, err)
	_, err = p.Record("a", "pop", "10", 0)
	require.NoError(t, err)

	ops, err := p.History("a")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "push", ops[0].Op)
	assert.Equal(t, "pop", ops[1].Op)
	assert.Equal(t, 0, ops[1].Size)
	assert.Less(t, ops[0].ID, ops[1].ID)

	require.NoError(t, p.Save("a", []string{"1"}))
	require.NoError(t, p.Delete("a"))
	items, err := p.Load("a")
	require.NoError(t, err)
	assert.Empty(t, items)
	ops, err = p.History("a")
	require.NoError(t, err)
	assert.Empty(t, ops)

	ops, err = p.History("b")
	require.NoError(t, err)
	assert.Len(t, ops, 1)
}

func TestUpdate(t *testing.T) {
	p := newTestProxy(t)
	require.NoError(t, p.Save("a", []string{"1"}))

	err := p.Update("a", func(items []string) ([]string, []Operation, error) {
		assert.Equal(t, []string{"1"}, items)
		return append(items, "2"), []Operation{{Op: "push", Value: "2", Size: 2}}, nil
	})
	require.NoError(t, err)

	items, err := p.Load("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, items)
	ops, err := p.History("a")
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "a", ops[0].Stack)
	assert.Equal(t, 2, ops[0].Size)
}

func TestUpdateFailureWritesNothing(t *testing.T) {
	p := newTestProxy(t)
	require.NoError(t, p.Save("a", []string{"1"}))

	boom := errors.New("boom")
	err := p.Update("a", func(items []string) ([]string, []Operation, error) {
		return nil, []Operation{{Op: "pop", Value: "1"}}, boom
	})
	require.ErrorIs(t, err, boom)

	items, err := p.Load("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, items)
	ops, err := p.History("a")
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestUpdateConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	const writers = 20

	// one connection pool per writer, as separate processes would have
	proxies := make([]*Proxy, writers)
	for i := range proxies {
		p, err := NewProxy(context.Background(), path)
		require.NoError(t, err)
		t.Cleanup(p.Close)
		proxies[i] = p
	}

	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i, p := range proxies {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = p.Update("s", func(items []string) ([]string, []Operation, error) {
				items = append(items, "v")
				return items, []Operation{{Op: "push", Value: "v", Size: len(items)}}, nil
			})
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	items, err := proxies[0].Load("s")
	require.NoError(t, err)
	assert.Len(t, items, writers)
	ops, err := proxies[0].History("s")
	require.NoError(t, err)
	require.Len(t, ops, writers)
	for i, o := range ops {
		assert.Equal(t, i+1, o.Size)
	}
}
