package world

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/spin/internal/engine/render"
	"github.com/Faultbox/spin/internal/engine/transform"
	"github.com/Faultbox/spin/internal/logger"
	"github.com/Faultbox/spin/pkg/math"
)

// Errors returned by SetParent.
var (
	ErrNotFound = errors.New("entity not found")
	ErrCycle    = errors.New("parent link would create a cycle")
)

type slot struct {
	generation uint32
	entity     *Entity
}

// Store is an arena of entities addressed by generation-checked ids.
// Removed slots are reused through a free list with a bumped generation.
type Store struct {
	slots []slot
	free  []uint32
	live  int
	queue *render.Queue
}

// NewStore returns an empty store that publishes render items to queue.
// A nil queue is allowed for stores without rendering.
func NewStore(queue *render.Queue) *Store {
	return &Store{queue: queue}
}

// Insert publishes a new entity and returns its id.
func (s *Store) Insert(init Init) EntityID {
	var index uint32
	if n := len(s.free); n > 0 {
		index = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		index = uint32(len(s.slots))
		s.slots = append(s.slots, slot{})
	}

	sl := &s.slots[index]
	sl.generation++
	id := EntityID{index: index, generation: sl.generation}

	tf := init.Transform
	switch {
	case tf != nil:
	case init.Render != nil:
		tf = init.Render.Transform()
	default:
		tf = transform.Identity()
	}
	e := &Entity{
		Name:      init.Name,
		Transform: tf,
		Render:    init.Render,
		id:        id,
	}
	sl.entity = e
	s.live++

	for _, child := range init.Children {
		c, ok := s.Get(child)
		if !ok || child == id {
			logger.Debug("world: dropping unknown child",
				zap.Stringer("entity", id), zap.Stringer("child", child))
			continue
		}
		s.detach(c)
		c.parent = id
		e.children = append(e.children, child)
	}

	// Children are already linked, so a parent below one of them reaches id.
	if p, ok := s.Get(init.Parent); ok {
		if s.reaches(init.Parent, id) {
			logger.Debug("world: dropping parent that would form a cycle",
				zap.Stringer("entity", id), zap.Stringer("parent", init.Parent))
		} else {
			e.parent = init.Parent
			p.children = append(p.children, id)
		}
	}

	if e.Render != nil {
		if e.Render.Transform() != tf {
			e.Render.SetTransform(tf)
		}
		e.Render.SetMatrixSource(func() math.Mat4 { return s.WorldMatrix(id) })
		if s.queue != nil {
			s.queue.Push(init.Order, e.Render)
		}
	}

	return id
}

// Get returns the entity for id. Unknown and stale ids return false.
func (s *Store) Get(id EntityID) (*Entity, bool) {
	if id.IsZero() || int(id.index) >= len(s.slots) {
		return nil, false
	}
	sl := s.slots[id.index]
	if sl.generation != id.generation || sl.entity == nil {
		return nil, false
	}
	return sl.entity, true
}

// Contains reports whether id refers to a live entity.
func (s *Store) Contains(id EntityID) bool {
	_, ok := s.Get(id)
	return ok
}

// Len returns the number of live entities.
func (s *Store) Len() int {
	return s.live
}

// Remove unlinks the entity from its parent, orphans its children and
// disables its render item. The id and every copy of it stop resolving.
func (s *Store) Remove(id EntityID) bool {
	e, ok := s.Get(id)
	if !ok {
		return false
	}

	s.detach(e)
	for _, child := range e.children {
		if c, ok := s.Get(child); ok {
			c.parent = EntityID{}
		}
	}
	e.children = nil

	if e.Render != nil {
		e.Render.Disable()
	}

	sl := &s.slots[id.index]
	sl.entity = nil
	s.free = append(s.free, id.index)
	s.live--
	return true
}

// detach removes e from its parent's child list.
func (s *Store) detach(e *Entity) {
	if p, ok := s.Get(e.parent); ok {
		p.children = removeID(p.children, e.id)
	}
	e.parent = EntityID{}
}

// Parent returns the live parent of id.
func (s *Store) Parent(id EntityID) (EntityID, bool) {
	e, ok := s.Get(id)
	if !ok || !s.Contains(e.parent) {
		return EntityID{}, false
	}
	return e.parent, true
}

// Children returns the live children of id in link order.
func (s *Store) Children(id EntityID) []EntityID {
	e, ok := s.Get(id)
	if !ok {
		return nil
	}
	out := make([]EntityID, 0, len(e.children))
	for _, c := range e.children {
		if s.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

// FindChild returns the first child of id matching pred.
func (s *Store) FindChild(id EntityID, pred func(*Entity) bool) (EntityID, bool) {
	for _, c := range s.Children(id) {
		if child, ok := s.Get(c); ok && pred(child) {
			return c, true
		}
	}
	return EntityID{}, false
}

// ChildByName returns the first child of id with the given name.
func (s *Store) ChildByName(id EntityID, name string) (EntityID, bool) {
	return s.FindChild(id, func(e *Entity) bool { return e.Name == name })
}

// SetParent moves child under parent. A zero parent detaches the child.
func (s *Store) SetParent(child, parent EntityID) error {
	c, ok := s.Get(child)
	if !ok {
		return ErrNotFound
	}
	if parent.IsZero() {
		s.detach(c)
		return nil
	}
	p, ok := s.Get(parent)
	if !ok {
		return ErrNotFound
	}
	if s.reaches(parent, child) {
		return ErrCycle
	}

	s.detach(c)
	c.parent = parent
	p.children = append(p.children, child)
	return nil
}

// Each calls fn for every live entity in slot order. Returning false stops.
func (s *Store) Each(fn func(*Entity) bool) {
	for _, sl := range s.slots {
		if sl.entity == nil {
			continue
		}
		if !fn(sl.entity) {
			return
		}
	}
}

// WorldMatrix returns the product of the transforms from the root down to id.
// Unknown ids return identity.
func (s *Store) WorldMatrix(id EntityID) math.Mat4 {
	e, ok := s.Get(id)
	if !ok {
		return math.Identity()
	}
	m := e.Transform.WorldMatrix()
	// Bounded by the number of slots so a corrupt chain cannot loop.
	for depth, cur := 0, e.parent; depth < len(s.slots); depth++ {
		p, ok := s.Get(cur)
		if !ok {
			break
		}
		m = p.Transform.WorldMatrix().Mul(m)
		cur = p.parent
	}
	return m
}

// reaches reports whether target is from or one of its ancestors. The walk
// is bounded by the number of slots.
func (s *Store) reaches(from, target EntityID) bool {
	cur := from
	for depth := 0; depth <= len(s.slots) && !cur.IsZero(); depth++ {
		if cur == target {
			return true
		}
		e, ok := s.Get(cur)
		if !ok {
			return false
		}
		cur = e.parent
	}
	return false
}

func removeID(ids []EntityID, id EntityID) []EntityID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
