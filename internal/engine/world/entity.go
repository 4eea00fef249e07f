package world

import (
	"fmt"

	"github.com/Faultbox/spin/internal/engine/render"
	"github.com/Faultbox/spin/internal/engine/transform"
)

// EntityID addresses a slot in the Store. The zero value refers to no entity.
// A stale id (slot removed or reused) never resolves.
type EntityID struct {
	index      uint32
	generation uint32
}

// IsZero reports whether id is the empty id.
func (id EntityID) IsZero() bool {
	return id.generation == 0
}

func (id EntityID) String() string {
	if id.IsZero() {
		return "Entity(none)"
	}
	return fmt.Sprintf("Entity(%d#%d)", id.index, id.generation)
}

// Entity is one published slot. Transform and Render are shared handles;
// links are maintained by the Store and read through Parent/Children.
type Entity struct {
	Name      string
	Transform *transform.Transform
	Render    *render.Item

	id       EntityID
	parent   EntityID
	children []EntityID
}

// ID returns the entity's own id.
func (e *Entity) ID() EntityID { return e.id }

// Parent returns the parent id, or the zero id.
func (e *Entity) Parent() EntityID { return e.parent }

// Children returns a copy of the child id list.
func (e *Entity) Children() []EntityID {
	out := make([]EntityID, len(e.children))
	copy(out, e.children)
	return out
}

// Init describes an entity to insert.
type Init struct {
	Name string

	// Transform defaults to identity when nil.
	Transform *transform.Transform

	// Render is pushed onto the queue in NeedsDraw state.
	Render *render.Item
	Order  render.Order

	Parent   EntityID
	Children []EntityID
}
