package ordering

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var errInjected = errors.New("injected failure")

type memRow struct {
	parent uint
	pos    int
}

// memSiblings is a Siblings that rejects any write leaving two rows of the
// same parent on one position, the way a per-row unique index would.
type memSiblings struct {
	parents map[uint]bool
	rows    map[uint]*memRow
	nextID  uint
	loads   []uint
	writes  int
	failOn  string
}

func newMemSiblings(parents ...uint) *memSiblings {
	m := &memSiblings{
		parents: make(map[uint]bool),
		rows:    make(map[uint]*memRow),
	}
	for _, p := range parents {
		m.parents[p] = true
	}
	return m
}

// add appends a row the way a service does after Append.
func (m *memSiblings) add(parent uint) uint {
	pos, err := Append(context.Background(), m, parent)
	if err != nil {
		panic(err)
	}
	m.nextID++
	m.rows[m.nextID] = &memRow{parent: parent, pos: pos}
	if err := m.check(); err != nil {
		panic(err)
	}
	return m.nextID
}

func (m *memSiblings) Load(_ context.Context, parentID uint) ([]Item, error) {
	if !m.parents[parentID] {
		return nil, ErrParentNotFound
	}
	m.loads = append(m.loads, parentID)

	var items []Item
	for id, r := range m.rows {
		if r.parent == parentID {
			items = append(items, Item{ID: id, Position: r.pos})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items, nil
}

func (m *memSiblings) Park(_ context.Context, id uint) error {
	if m.failOn == "park" {
		return errInjected
	}
	m.writes++
	m.rows[id].pos = Sentinel
	return m.check()
}

func (m *memSiblings) Shift(_ context.Context, parentID uint, from, to, delta int) error {
	if m.failOn == "shift" {
		return errInjected
	}
	m.writes++
	for _, r := range m.rows {
		if r.parent == parentID && r.pos >= from && r.pos <= to && r.pos != Sentinel {
			r.pos += delta
		}
	}
	return m.check()
}

func (m *memSiblings) Place(_ context.Context, id, parentID uint, position int) error {
	if m.failOn == "place" {
		return errInjected
	}
	m.writes++
	r := m.rows[id]
	r.parent = parentID
	r.pos = position
	return m.check()
}

func (m *memSiblings) Delete(_ context.Context, id uint) error {
	if m.failOn == "delete" {
		return errInjected
	}
	m.writes++
	delete(m.rows, id)
	return nil
}

func (m *memSiblings) check() error {
	type key struct {
		parent uint
		pos    int
	}
	seen := make(map[key]uint, len(m.rows))
	for id, r := range m.rows {
		k := key{r.parent, r.pos}
		if other, dup := seen[k]; dup {
			return fmt.Errorf("unique violation: rows %d and %d at (%d, %d)", other, id, r.parent, r.pos)
		}
		seen[k] = id
	}
	return nil
}

// order returns the ids under parent by ascending position.
func (m *memSiblings) order(parent uint) []uint {
	items, _ := m.Load(context.Background(), parent)
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// positions returns the positions under parent in ascending order.
func (m *memSiblings) positions(parent uint) []int {
	items, _ := m.Load(context.Background(), parent)
	pos := make([]int, len(items))
	for i, it := range items {
		pos[i] = it.Position
	}
	return pos
}
