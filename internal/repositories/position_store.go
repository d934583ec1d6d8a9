package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kanban-board.com/kanban-board/internal/ordering"
)

// flipOffset maps a live position p to -(p+2) while a range is in flight,
// keeping flipped rows clear of both live slots and ordering.Sentinel.
const flipOffset = 2

// positionStore implements ordering.Siblings over one table with a
// (parent, position) unique index.
type positionStore struct {
	db             *gorm.DB
	newModel       func() interface{}
	newParent      func() interface{}
	parentKey      string
	touchUpdatedAt bool
}

var _ ordering.Siblings = (*positionStore)(nil)

func (s *positionStore) Load(ctx context.Context, parentID uint) ([]ordering.Item, error) {
	var parents []uint
	err := s.db.WithContext(ctx).Model(s.newParent()).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", parentID).
		Pluck("id", &parents).Error
	if err != nil {
		return nil, fmt.Errorf("lock parent %d: %w", parentID, err)
	}
	if len(parents) == 0 {
		return nil, ordering.ErrParentNotFound
	}

	var items []ordering.Item
	err = s.db.WithContext(ctx).Model(s.newModel()).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "position").
		Where(s.parentKey+" = ?", parentID).
		Order("position asc").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("lock siblings of %d: %w", parentID, err)
	}

	return items, nil
}

func (s *positionStore) Park(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(s.newModel()).
		Where("id = ?", id).
		UpdateColumn("position", ordering.Sentinel)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ordering.ErrChildNotFound
	}
	return nil
}

// Shift runs as two statements so the store never sees a duplicate even when
// it checks uniqueness row by row: the range is flipped below the sentinel,
// then every flipped row is restored with delta applied.
func (s *positionStore) Shift(ctx context.Context, parentID uint, from, to, delta int) error {
	if from > to {
		return nil
	}

	err := s.db.WithContext(ctx).Model(s.newModel()).
		Where(s.parentKey+" = ? AND position BETWEEN ? AND ?", parentID, from, to).
		UpdateColumn("position", gorm.Expr("-(position + ?)", flipOffset)).Error
	if err != nil {
		return fmt.Errorf("flip positions %d..%d of %d: %w", from, to, parentID, err)
	}

	err = s.db.WithContext(ctx).Model(s.newModel()).
		Where(s.parentKey+" = ? AND position < ?", parentID, ordering.Sentinel).
		UpdateColumn("position", gorm.Expr("? - position", delta-flipOffset)).Error
	if err != nil {
		return fmt.Errorf("restore positions of %d: %w", parentID, err)
	}

	return nil
}

func (s *positionStore) Place(ctx context.Context, id, parentID uint, position int) error {
	updates := map[string]interface{}{
		s.parentKey: parentID,
		"position":  position,
	}

	db := s.db.WithContext(ctx).Model(s.newModel()).Where("id = ?", id)
	var res *gorm.DB
	if s.touchUpdatedAt {
		res = db.Updates(updates)
	} else {
		res = db.UpdateColumns(updates)
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ordering.ErrChildNotFound
	}
	return nil
}

func (s *positionStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(s.newModel(), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ordering.ErrChildNotFound
	}
	return nil
}
