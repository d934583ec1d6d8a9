package ordering

import "context"

// Append locks the sibling set of parentID and returns the slot a new child
// takes: the current count. The caller inserts the row at that position in
// the same transaction.
func Append(ctx context.Context, s Siblings, parentID uint) (int, error) {
	items, err := s.Load(ctx, parentID)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// MoveWithin moves childID to newPos among its siblings. newPos is clamped
// to [0, N-1]. It returns the final position.
func MoveWithin(ctx context.Context, s Siblings, parentID, childID uint, newPos int) (int, error) {
	items, err := s.Load(ctx, parentID)
	if err != nil {
		return 0, err
	}

	idx := indexOf(items, childID)
	if idx < 0 {
		return 0, ErrChildNotFound
	}

	oldPos := items[idx].Position
	newPos = Clamp(newPos, len(items)-1)

	from, to, delta, ok := ShiftFor(oldPos, newPos)
	if !ok {
		return oldPos, nil
	}

	if err := s.Park(ctx, childID); err != nil {
		return 0, &StageError{Op: "move", Stage: StageStaged, Err: err}
	}
	if err := s.Shift(ctx, parentID, from, to, delta); err != nil {
		return 0, &StageError{Op: "move", Stage: StageParked, Err: err}
	}
	if err := s.Place(ctx, childID, parentID, newPos); err != nil {
		return 0, &StageError{Op: "move", Stage: StageApplied, Err: err}
	}

	return newPos, nil
}

// MoveAcross moves childID from fromID to toID at newPos, closing the gap it
// leaves and opening one at the destination. newPos is clamped to [0, M]
// where M is the destination count. Both sibling sets are locked in
// ascending parent id order. Equal parents fall back to MoveWithin.
func MoveAcross(ctx context.Context, s Siblings, fromID, toID, childID uint, newPos int) (int, error) {
	if fromID == toID {
		return MoveWithin(ctx, s, fromID, childID, newPos)
	}

	source, target, err := loadPair(ctx, s, fromID, toID)
	if err != nil {
		return 0, err
	}

	idx := indexOf(source, childID)
	if idx < 0 {
		return 0, ErrChildNotFound
	}

	oldPos := source[idx].Position
	newPos = Clamp(newPos, len(target))

	if err := s.Park(ctx, childID); err != nil {
		return 0, &StageError{Op: "move across", Stage: StageStaged, Err: err}
	}

	if last := len(source) - 1; oldPos < last {
		if err := s.Shift(ctx, fromID, oldPos+1, last, -1); err != nil {
			return 0, &StageError{Op: "move across", Stage: StageParked, Err: err}
		}
	}
	if last := len(target) - 1; newPos <= last {
		if err := s.Shift(ctx, toID, newPos, last, 1); err != nil {
			return 0, &StageError{Op: "move across", Stage: StageParked, Err: err}
		}
	}

	if err := s.Place(ctx, childID, toID, newPos); err != nil {
		return 0, &StageError{Op: "move across", Stage: StageApplied, Err: err}
	}

	return newPos, nil
}

// Remove deletes childID and pulls every later sibling up by one.
func Remove(ctx context.Context, s Siblings, parentID, childID uint) error {
	items, err := s.Load(ctx, parentID)
	if err != nil {
		return err
	}

	idx := indexOf(items, childID)
	if idx < 0 {
		return ErrChildNotFound
	}

	oldPos := items[idx].Position
	if err := s.Delete(ctx, childID); err != nil {
		return &StageError{Op: "remove", Stage: StageStaged, Err: err}
	}

	if last := len(items) - 1; oldPos < last {
		if err := s.Shift(ctx, parentID, oldPos+1, last, -1); err != nil {
			return &StageError{Op: "remove", Stage: StageParked, Err: err}
		}
	}

	return nil
}

func loadPair(ctx context.Context, s Siblings, fromID, toID uint) (source, target []Item, err error) {
	if fromID < toID {
		if source, err = s.Load(ctx, fromID); err != nil {
			return nil, nil, err
		}
		if target, err = s.Load(ctx, toID); err != nil {
			return nil, nil, err
		}
		return source, target, nil
	}

	if target, err = s.Load(ctx, toID); err != nil {
		return nil, nil, err
	}
	if source, err = s.Load(ctx, fromID); err != nil {
		return nil, nil, err
	}
	return source, target, nil
}
