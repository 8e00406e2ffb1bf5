package optimistic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec struct {
	ID   string
	Done bool
	Mood string
}

func recID(r rec) string { return r.ID }

func flipDone(r rec) rec {
	r.Done = !r.Done
	return r
}

func ids(items []rec) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestStore_ApplyAndRollback(t *testing.T) {
	s := NewStore(recID, []rec{{ID: "a"}, {ID: "b"}})

	require.True(t, s.ApplyOptimistic("a", flipDone))
	got, _ := s.Get("a")
	assert.True(t, got.Done)

	require.True(t, s.Rollback("a", flipDone))
	got, _ = s.Get("a")
	assert.False(t, got.Done)

	assert.False(t, s.ApplyOptimistic("missing", flipDone))
}

func TestStore_RemoveRestoreKeepsPosition(t *testing.T) {
	s := NewStore(recID, []rec{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	snap, ok := s.Remove("b")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "c"}, ids(s.Items()))
	assert.Equal(t, 1, snap.Index)

	require.True(t, s.Restore(snap))
	assert.Equal(t, []string{"a", "b", "c"}, ids(s.Items()))

	assert.False(t, s.Restore(snap), "already present")
	assert.Equal(t, 3, s.Len())
}

func TestStore_RestoreClampsIndex(t *testing.T) {
	s := NewStore(recID, []rec{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	snap, _ := s.Remove("c")
	s.ReplaceAll([]rec{{ID: "a"}})

	s.Restore(snap)
	assert.Equal(t, []string{"a", "c"}, ids(s.Items()))
}

func TestStore_ItemsIsACopy(t *testing.T) {
	s := NewStore(recID, []rec{{ID: "a"}})
	items := s.Items()
	items[0].Done = true

	got, _ := s.Get("a")
	assert.False(t, got.Done)
}

func TestStore_ChangesAndOnChange(t *testing.T) {
	s := NewStore(recID, []rec{{ID: "a"}})
	calls := 0
	s.OnChange(func() { calls++ })

	s.ApplyOptimistic("a", flipDone)
	s.Put(rec{ID: "b"})
	s.ReplaceAll(nil)
	s.ApplyOptimistic("missing", flipDone)

	assert.Equal(t, 3, calls)
	assert.Equal(t, uint64(3), s.changes())
}

func TestEffects_UndoRestoresPriorState(t *testing.T) {
	tests := []struct {
		name   string
		effect Effect[rec, string]
		after  func(t *testing.T, s *Store[rec, string])
	}{
		{
			name:   "flip",
			effect: Flip[rec, string](flipDone),
			after: func(t *testing.T, s *Store[rec, string]) {
				got, _ := s.Get("b")
				assert.True(t, got.Done)
			},
		},
		{
			name: "replace",
			effect: Replace[rec, string](func(r rec) rec {
				r.Mood = "great"
				return r
			}),
			after: func(t *testing.T, s *Store[rec, string]) {
				got, _ := s.Get("b")
				assert.Equal(t, "great", got.Mood)
			},
		},
		{
			name:   "remove",
			effect: Remove[rec, string](),
			after: func(t *testing.T, s *Store[rec, string]) {
				_, ok := s.Get("b")
				assert.False(t, ok)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := []rec{{ID: "a"}, {ID: "b", Mood: "low"}, {ID: "c"}}
			s := NewStore(recID, before)

			undo, ok := tt.effect(s, "b")
			require.True(t, ok)
			tt.after(t, s)

			undo()
			assert.Equal(t, before, s.Items())
		})
	}
}

func TestEffects_MissingRecordIsNoop(t *testing.T) {
	s := NewStore(recID, []rec{{ID: "a"}})
	for _, eff := range []Effect[rec, string]{Flip[rec, string](flipDone), Replace[rec, string](flipDone), Remove[rec, string]()} {
		undo, ok := eff(s, "zzz")
		assert.False(t, ok)
		assert.Nil(t, undo)
	}
	assert.Equal(t, uint64(0), s.changes())
}
