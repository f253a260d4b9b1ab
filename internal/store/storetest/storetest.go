// Package storetest checks that a runnerboard.Store behaves like the
// in-memory reference store.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescuerunner/runnerboard"
)

var epoch = time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)

// Entry builds an entry submitted offset seconds after a fixed epoch.
func Entry(identity string, score int64, offset int) runnerboard.Entry {
	return runnerboard.Entry{
		Identity:    identity,
		DisplayName: runnerboard.DisplayName(identity),
		Score:       score,
		SubmittedAt: epoch.Add(time.Duration(offset) * time.Second),
		GameVersion: runnerboard.DefaultGameVersion,
	}
}

// Run exercises the Store contract against stores produced by newStore. Each
// subtest gets a fresh, empty store.
func Run(t *testing.T, newStore func(t *testing.T) runnerboard.Store) {
	ctx := context.Background()

	t.Run("get on an empty store is not found", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Get(ctx, "0xaa")
		assert.ErrorIs(t, err, runnerboard.ErrNotFound)

		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("upsert inserts then replaces", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Upsert(ctx, Entry("0xaa", 10, 0)))
		got, err := s.Get(ctx, "0xaa")
		require.NoError(t, err)
		assert.Equal(t, Entry("0xaa", 10, 0), got)

		replacement := Entry("0xaa", 5, 3)
		replacement.DisplayName = "runner"
		require.NoError(t, s.Upsert(ctx, replacement))

		got, err = s.Get(ctx, "0xaa")
		require.NoError(t, err)
		assert.Equal(t, replacement, got, "the store does not compare scores")

		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("enforce capacity keeps the best entries", func(t *testing.T) {
		s := newStore(t)

		for i := 0; i < 6; i++ {
			require.NoError(t, s.Upsert(ctx, Entry(fmt.Sprintf("0x%02d", i), int64(i*10), i)))
		}

		require.NoError(t, s.EnforceCapacity(ctx, 3))

		all, err := s.All(ctx)
		require.NoError(t, err)
		runnerboard.Sort(all)

		var ids []string
		for _, e := range all {
			ids = append(ids, e.Identity)
		}
		assert.Equal(t, []string{"0x05", "0x04", "0x03"}, ids)
	})

	t.Run("enforce capacity breaks ties by submission time", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Upsert(ctx, Entry("0xlate", 50, 9)))
		require.NoError(t, s.Upsert(ctx, Entry("0xearly", 50, 1)))
		require.NoError(t, s.Upsert(ctx, Entry("0xbest", 70, 5)))

		require.NoError(t, s.EnforceCapacity(ctx, 2))

		_, err := s.Get(ctx, "0xlate")
		assert.ErrorIs(t, err, runnerboard.ErrNotFound)

		_, err = s.Get(ctx, "0xearly")
		assert.NoError(t, err)
	})

	t.Run("save upserts and trims in one step", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Save(ctx, Entry("0xaa", 10, 0), 2))
		require.NoError(t, s.Save(ctx, Entry("0xbb", 30, 1), 2))
		require.NoError(t, s.Save(ctx, Entry("0xcc", 20, 2), 2))

		_, err := s.Get(ctx, "0xaa")
		assert.ErrorIs(t, err, runnerboard.ErrNotFound)

		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		improved := Entry("0xcc", 40, 3)
		require.NoError(t, s.Save(ctx, improved, 2))
		got, err := s.Get(ctx, "0xcc")
		require.NoError(t, err)
		assert.Equal(t, improved, got)
	})

	t.Run("save drops a new entry that ranks below a full board", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Save(ctx, Entry("0xaa", 50, 0), 1))
		require.NoError(t, s.Save(ctx, Entry("0xbb", 5, 1), 1))

		_, err := s.Get(ctx, "0xbb")
		assert.ErrorIs(t, err, runnerboard.ErrNotFound)

		got, err := s.Get(ctx, "0xaa")
		require.NoError(t, err)
		assert.EqualValues(t, 50, got.Score)
	})

	t.Run("enforce capacity below size is a no-op", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Upsert(ctx, Entry("0xaa", 1, 0)))
		require.NoError(t, s.EnforceCapacity(ctx, 100))

		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}
