package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
	domainsession "csvdash/domain/session"
	"csvdash/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *MemoryStore {
	return NewMemoryStore(internal.NewLoggerTo(io.Discard, internal.LogLevelError))
}

func TestUpdate_CreatesSessionInNoFileState(t *testing.T) {
	store := newTestStore()
	id := core.NewSessionID()

	_, err := store.Get(context.Background(), id)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	state, err := store.Update(context.Background(), id, func(s domainsession.State) (domainsession.State, error) {
		return s, nil
	})
	require.NoError(t, err)
	assert.Equal(t, id, state.ID)
	assert.Equal(t, domainsession.PhaseNoFile, state.Phase())
	assert.Equal(t, domainsession.PromptMessage, state.Notice.Text)
	assert.Equal(t, 1, store.Len())
}

func TestUpdate_FailedUploadKeepsPreviousTable(t *testing.T) {
	store := newTestStore()
	id := core.NewSessionID()
	ctx := context.Background()
	table := &dataset.Table{Name: "first.csv", Rows: 3}

	_, err := store.Update(ctx, id, func(s domainsession.State) (domainsession.State, error) {
		return s.WithTable(table, "first.csv", time.Now()), nil
	})
	require.NoError(t, err)

	parseErr := core.NewParseError("expected 2 fields in line 3, saw 3")
	state, err := store.Update(ctx, id, func(s domainsession.State) (domainsession.State, error) {
		return s.WithUploadError(parseErr, time.Now()), nil
	})
	require.NoError(t, err)
	assert.Same(t, table, state.Table)
	assert.Equal(t, domainsession.NoticeError, state.Notice.Kind)

	// a failing fn stores nothing
	boom := errors.New("boom")
	_, err = store.Update(ctx, id, func(s domainsession.State) (domainsession.State, error) {
		return domainsession.State{}, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Same(t, table, got.Table)
}

func TestUpdate_SerialisesOneSession(t *testing.T) {
	store := newTestStore()
	id := core.NewSessionID()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(context.Background(), id, func(s domainsession.State) (domainsession.State, error) {
				s.Toggles.Info = !s.Toggles.Info
				s.Selection.Categorical += "x"
				return s, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, state.Selection.Categorical, 50, "every read-modify-write must see the previous one")
	assert.False(t, state.Toggles.Info)
}

func TestUpdate_EntryEvictedWhileWaiting(t *testing.T) {
	store := newTestStore()
	id := core.NewSessionID()
	ctx := context.Background()

	stale := store.entryFor(id)
	stale.mu.Lock()

	done := make(chan error, 1)
	go func() {
		_, err := store.Update(ctx, id, func(s domainsession.State) (domainsession.State, error) {
			s.Selection.Numerical = "revenue"
			return s, nil
		})
		done <- err
	}()

	// let Update pick up the entry and block on it, then evict it
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, store.Delete(ctx, id))
	stale.mu.Unlock()
	require.NoError(t, <-done)

	got, err := store.Get(ctx, id)
	require.NoError(t, err, "the update must land on a live entry")
	assert.Equal(t, "revenue", got.Selection.Numerical)
	assert.Equal(t, 1, store.Len())
}

func TestCleanupExpired(t *testing.T) {
	store := newTestStore()
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	stale := core.NewSessionID()
	fresh := core.NewSessionID()
	_, err := store.Update(ctx, stale, func(s domainsession.State) (domainsession.State, error) {
		return s.Touch(now.Add(-3 * time.Hour)), nil
	})
	require.NoError(t, err)
	_, err = store.Update(ctx, fresh, func(s domainsession.State) (domainsession.State, error) {
		return s.Touch(now.Add(-time.Minute)), nil
	})
	require.NoError(t, err)

	removed, err := store.CleanupExpired(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(ctx, stale)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	_, err = store.Get(ctx, fresh)
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	store := newTestStore()
	id := core.NewSessionID()
	ctx := context.Background()

	assert.ErrorIs(t, store.Delete(ctx, id), core.ErrSessionNotFound)
	_, err := store.Update(ctx, id, func(s domainsession.State) (domainsession.State, error) { return s, nil })
	require.NoError(t, err)
	assert.NoError(t, store.Delete(ctx, id))
	assert.Equal(t, 0, store.Len())
}

func TestRunJanitor_StopsWithContext(t *testing.T) {
	store := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- RunJanitor(ctx, store, time.Millisecond, time.Hour) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
