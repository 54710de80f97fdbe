package ordering

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memScope is an in-memory Collection over id -> position, mirroring how
// the SQL scopes behave: the excluded entity is invisible to counts and
// shifts.
type memScope struct {
	positions map[string]int
	exclude   string
}

func newMemScope(ids ...string) *memScope {
	s := &memScope{positions: map[string]int{}}
	for i, id := range ids {
		s.positions[id] = i + 1
	}
	return s
}

func (s *memScope) Count(_ context.Context) (int, error) {
	n := 0
	for id := range s.positions {
		if id != s.exclude {
			n++
		}
	}
	return n, nil
}

func (s *memScope) ShiftRight(_ context.Context, from int) error {
	for id, pos := range s.positions {
		if id != s.exclude && pos >= from {
			s.positions[id] = pos + 1
		}
	}
	return nil
}

func (s *memScope) ShiftLeft(_ context.Context, after int) error {
	for id, pos := range s.positions {
		if id != s.exclude && pos > after {
			s.positions[id] = pos - 1
		}
	}
	return nil
}

func (s *memScope) place(id string) PlaceFunc {
	return func(_ context.Context, position int) error {
		s.positions[id] = position
		return nil
	}
}

// ordered returns ids sorted by position and fails the test if positions
// are not exactly {1..n}.
func ordered(t *testing.T, s *memScope) []string {
	t.Helper()

	type pair struct {
		id  string
		pos int
	}
	pairs := make([]pair, 0, len(s.positions))
	for id, pos := range s.positions {
		pairs = append(pairs, pair{id, pos})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	ids := make([]string, 0, len(pairs))
	for i, p := range pairs {
		require.Equal(t, i+1, p.pos, "positions must be contiguous from 1")
		ids = append(ids, p.id)
	}
	return ids
}

func TestInsertAtTail(t *testing.T) {
	ctx := context.Background()
	s := newMemScope()

	pos, err := InsertAtTail(ctx, s, s.place("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	pos, err = InsertAtTail(ctx, s, s.place("b"))
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	assert.Equal(t, []string{"a", "b"}, ordered(t, s))
}

func TestInsertAtShiftsSiblings(t *testing.T) {
	ctx := context.Background()
	s := newMemScope("a", "b", "c")

	require.NoError(t, InsertAt(ctx, s, 2, s.place("x")))
	assert.Equal(t, []string{"a", "x", "b", "c"}, ordered(t, s))
}

func TestInsertAtTailPosition(t *testing.T) {
	ctx := context.Background()
	s := newMemScope("a", "b")

	// count+1 is the append slot and must be accepted
	require.NoError(t, InsertAt(ctx, s, 3, s.place("x")))
	assert.Equal(t, []string{"a", "b", "x"}, ordered(t, s))
}

func TestInsertAtRejectsOutOfRange(t *testing.T) {
	ctx := context.Background()

	for _, position := range []int{0, -1, 5} {
		s := newMemScope("a", "b", "c")
		err := InsertAt(ctx, s, position, s.place("x"))
		require.Error(t, err, "position %d", position)
		assert.True(t, perrors.HasCode(err, perrors.ErrCodeBadInput))
		assert.Equal(t, []string{"a", "b", "c"}, ordered(t, s), "rejected insert must not renumber")
	}
}

func TestMoveWithinScopeBackward(t *testing.T) {
	ctx := context.Background()
	s := newMemScope("a", "b", "c")

	// c moves from 3 to 1; the view excludes the moving entity
	s.exclude = "c"
	err := Move(ctx, s, s, 3, 1, s.place("c"))
	require.NoError(t, err)
	s.exclude = ""

	assert.Equal(t, []string{"c", "a", "b"}, ordered(t, s))
}

func TestMoveWithinScopeForward(t *testing.T) {
	ctx := context.Background()
	s := newMemScope("a", "b", "c")

	s.exclude = "a"
	err := Move(ctx, s, s, 1, 3, s.place("a"))
	require.NoError(t, err)
	s.exclude = ""

	assert.Equal(t, []string{"b", "c", "a"}, ordered(t, s))
}

func TestMoveSamePosition(t *testing.T) {
	ctx := context.Background()
	s := newMemScope("a", "b", "c")

	s.exclude = "b"
	err := Move(ctx, s, s, 2, 2, s.place("b"))
	require.NoError(t, err)
	s.exclude = ""

	assert.Equal(t, []string{"a", "b", "c"}, ordered(t, s))
}

func TestMoveAcrossScopes(t *testing.T) {
	ctx := context.Background()
	src := newMemScope("a", "b", "c")
	dst := newMemScope("x", "y")

	src.exclude, dst.exclude = "b", "b"
	err := Move(ctx, src, dst, 2, 2, dst.place("b"))
	require.NoError(t, err)
	src.exclude, dst.exclude = "", ""
	delete(src.positions, "b")

	assert.Equal(t, []string{"a", "c"}, ordered(t, src))
	assert.Equal(t, []string{"x", "b", "y"}, ordered(t, dst))
}

func TestMoveAcrossScopesToTail(t *testing.T) {
	ctx := context.Background()
	src := newMemScope("a", "b")
	dst := newMemScope("x", "y")

	// position count+1 of the target is valid for a cross-scope move
	src.exclude, dst.exclude = "a", "a"
	err := Move(ctx, src, dst, 1, 3, dst.place("a"))
	require.NoError(t, err)
	src.exclude, dst.exclude = "", ""
	delete(src.positions, "a")

	assert.Equal(t, []string{"b"}, ordered(t, src))
	assert.Equal(t, []string{"x", "y", "a"}, ordered(t, dst))
}

func TestMoveRejectsOutOfRangeAndCompactsNothing(t *testing.T) {
	ctx := context.Background()
	src := newMemScope("a", "b", "c")
	dst := newMemScope("x")

	src.exclude, dst.exclude = "b", "b"
	err := Move(ctx, src, dst, 2, 4, dst.place("b"))
	require.Error(t, err)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeBadInput))
}

func TestRemoveCompacts(t *testing.T) {
	ctx := context.Background()
	s := newMemScope("a", "b", "c", "d")

	delete(s.positions, "b")
	require.NoError(t, Remove(ctx, s, 2))

	assert.Equal(t, []string{"a", "c", "d"}, ordered(t, s))
}

func TestRandomizedOperationsKeepContiguity(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	s := newMemScope()
	next := 0
	ids := []string{}

	newID := func() string {
		next++
		return fmt.Sprintf("e%d", next)
	}

	for i := 0; i < 500; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(ids) == 0:
			id := newID()
			count, _ := s.Count(ctx)
			if rng.Intn(2) == 0 {
				_, err := InsertAtTail(ctx, s, s.place(id))
				require.NoError(t, err)
			} else {
				require.NoError(t, InsertAt(ctx, s, rng.Intn(count+1)+1, s.place(id)))
			}
			ids = append(ids, id)

		case op == 1:
			idx := rng.Intn(len(ids))
			id := ids[idx]
			from := s.positions[id]
			count, _ := s.Count(ctx)

			s.exclude = id
			err := Move(ctx, s, s, from, rng.Intn(count)+1, s.place(id))
			s.exclude = ""
			require.NoError(t, err)

		default:
			idx := rng.Intn(len(ids))
			id := ids[idx]
			pos := s.positions[id]
			delete(s.positions, id)
			require.NoError(t, Remove(ctx, s, pos))
			ids = append(ids[:idx], ids[idx+1:]...)
		}

		ordered(t, s)
	}
}
