// Package ordering keeps sibling sets densely indexed.
//
// Every ordered child (a column on a board, a task in a column) carries a
// position, and for each parent with N children the positions are exactly
// 0..N-1. The store enforces a unique (parent, position) index which may be
// checked row by row, so no write issued here ever produces a duplicate, not
// even transiently:
//
//   - the moving row is parked at Sentinel first, vacating its slot;
//   - Siblings.Shift moves a whole range through negative space before
//     applying the delta, so a shifted row never lands on a live neighbour;
//   - the moving row is placed last, into the slot the shift opened.
//
// All functions expect to run inside one transaction, which the caller owns.
package ordering

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel is the parked position of a row that is being moved.
const Sentinel = -1

var (
	ErrParentNotFound = errors.New("ordering: parent not found")
	ErrChildNotFound  = errors.New("ordering: child not found")
)

// Item is the positional view of one child.
type Item struct {
	ID       uint
	Position int
}

// Siblings is the persistence port for one ordered collection.
type Siblings interface {
	// Load locks the parent row and all of its children and returns the
	// children ordered by ascending position.
	Load(ctx context.Context, parentID uint) ([]Item, error)
	// Park writes Sentinel as the position of id.
	Park(ctx context.Context, id uint) error
	// Shift adds delta to the position of every child of parentID whose
	// position lies in [from, to]. Parked rows are not touched.
	Shift(ctx context.Context, parentID uint, from, to, delta int) error
	// Place writes the final parent and position of id.
	Place(ctx context.Context, id, parentID uint, position int) error
	// Delete removes id.
	Delete(ctx context.Context, id uint) error
}

// Stage is how far a reorder got.
type Stage string

const (
	StageLoaded    Stage = "loaded"
	StageStaged    Stage = "staged"
	StageParked    Stage = "parked"
	StageApplied   Stage = "applied"
	StageCommitted Stage = "committed"
)

// StageError wraps a persistence failure with the last stage that completed.
// StageCommitted marks a commit that failed after every write succeeded.
type StageError struct {
	Op    string
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("ordering: %s failed after %s: %v", e.Op, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Clamp bounds pos to [0, max].
func Clamp(pos, max int) int {
	if pos < 0 || max < 0 {
		return 0
	}
	if pos > max {
		return max
	}
	return pos
}

// ShiftFor returns the sibling range and delta that make room for a child
// moving from old to new within the same parent. ok is false when nothing
// has to move.
func ShiftFor(old, new int) (from, to, delta int, ok bool) {
	switch {
	case new < old:
		return new, old - 1, 1, true
	case new > old:
		return old + 1, new, -1, true
	default:
		return 0, 0, 0, false
	}
}

func indexOf(items []Item, id uint) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
