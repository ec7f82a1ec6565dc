package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string
	Code string
}

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var got []item
	ok, err := m.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	want := []item{{"NAVER", "035420"}}
	require.NoError(t, m.Set(ctx, "k", want, time.Minute))
	ok, err = m.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, m.Delete(ctx, "k"))
	ok, _ = m.Get(ctx, "k", &got)
	assert.False(t, ok)
}

func TestMemoryExpires(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2021, 1, 1, 5, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", 1, time.Hour))
	var v int
	ok, _ := m.Get(ctx, "k", &v)
	assert.True(t, ok)

	now = now.Add(time.Hour)
	ok, _ = m.Get(ctx, "k", &v)
	assert.False(t, ok)
}

func TestMemoize(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	calls := 0
	fn := func() ([]item, error) {
		calls++
		return []item{{"삼성전자", "005930"}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Memoize(ctx, m, "roster", time.Minute, fn)
		require.NoError(t, err)
		assert.Equal(t, "005930", got[0].Code)
	}
	assert.Equal(t, 1, calls)
}

func TestMemoizeDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("boom")
	calls := 0
	fn := func() (int, error) {
		calls++
		return 0, boom
	}

	_, err := Memoize(ctx, m, "k", time.Minute, fn)
	assert.ErrorIs(t, err, boom)
	_, err = Memoize(ctx, m, "k", time.Minute, fn)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
