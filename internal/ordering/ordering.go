// Package ordering maintains strict, contiguous, 1-based positions within
// a scope: columns within a project, tasks within a column. Every operation
// leaves the scope's position set exactly {1..count}.
package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/mosaicboards/mosaic/internal/perrors"
)

// Collection is the mutable view of one ordered scope. Implementations run
// against the caller's transaction; when an entity is being moved, the view
// must exclude it so counts and shifts see only its siblings.
type Collection interface {
	// Count returns the number of entities in the scope.
	Count(ctx context.Context) (int, error)
	// ShiftRight increments the position of every entity at position >= from.
	ShiftRight(ctx context.Context, from int) error
	// ShiftLeft decrements the position of every entity at position > after.
	ShiftLeft(ctx context.Context, after int) error
}

// PlaceFunc writes the entity into the scope at its final position, either
// inserting a new row or updating a moved one.
type PlaceFunc func(ctx context.Context, position int) error

// InsertAtTail appends the entity at position count+1 (1 when empty). No
// sibling is renumbered.
func InsertAtTail(ctx context.Context, c Collection, place PlaceFunc) (int, error) {
	count, err := c.Count(ctx)
	if err != nil {
		return 0, err
	}

	position := count + 1
	if err := place(ctx, position); err != nil {
		return 0, err
	}

	return position, nil
}

// InsertAt places the entity at position, shifting entities at >= position
// one slot right. Positions outside 1..count+1 are rejected; silently
// clamping would hide caller bugs behind a valid-looking ordering.
func InsertAt(ctx context.Context, c Collection, position int, place PlaceFunc) error {
	count, err := c.Count(ctx)
	if err != nil {
		return err
	}

	if position < 1 || position > count+1 {
		return perrors.NewErrBadInput(
			fmt.Sprintf("Position must be between 1 and %d", count+1),
			errors.New("position out of range"),
			map[string]interface{}{"position": position, "count": count},
		)
	}

	if err := c.ShiftRight(ctx, position); err != nil {
		return err
	}

	return place(ctx, position)
}

// Move relocates the entity sitting at fromPos in source to toPos in
// target. The source is compacted first, then the insert runs against the
// already-mutated state, so a same-scope move never works off a stale
// snapshot. Both Collection views must exclude the moving entity.
func Move(ctx context.Context, source, target Collection, fromPos, toPos int, place PlaceFunc) error {
	if err := source.ShiftLeft(ctx, fromPos); err != nil {
		return err
	}

	return InsertAt(ctx, target, toPos, place)
}

// Remove compacts the scope after the entity at position has been deleted.
func Remove(ctx context.Context, c Collection, position int) error {
	return c.ShiftLeft(ctx, position)
}
