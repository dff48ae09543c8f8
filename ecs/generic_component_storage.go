package ecs

import (
	"iter"
	"math/bits"
	"reflect"
)

// ComponentRegistry manages component type registration for an ECS instance.
// Each Storage has its own registry so independent worlds (a game world and a
// debug overlay, for example) never share column layouts.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
}

// RegisterComponent registers a component type with the given registry.
// This must be called for each component type before it can be spawned.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	r.factories[t] = func() iComponentStorage {
		return &pagedStorage[T]{}
	}
}

// Registered reports whether T has been registered.
func Registered[T any](r *ComponentRegistry) bool {
	_, ok := r.factories[reflect.TypeFor[T]()]
	return ok
}

func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

const pageSize = 64

// page holds pageSize components plus an occupancy bitmask. Pages are
// allocated individually so component pointers survive column growth.
type page[T any] struct {
	items    [pageSize]T
	occupied uint64
}

// pagedStorage is the iComponentStorage for a single component type.
type pagedStorage[T any] struct {
	pages     []*page[T]
	freeSlots []int
	nextIndex int
	count     int
}

func (cs *pagedStorage[T]) locate(index int) (*page[T], uint64, bool) {
	if index < 0 || index >= cs.nextIndex {
		return nil, 0, false
	}
	p := cs.pages[index/pageSize]
	return p, uint64(1) << uint(index%pageSize), true
}

// Append stores a component (value or pointer to value) and returns its slot.
func (cs *pagedStorage[T]) Append(item any) int {
	var value T
	switch v := item.(type) {
	case *T:
		value = *v
	case T:
		value = v
	default:
		return -1
	}

	var index int
	if n := len(cs.freeSlots); n > 0 {
		index = cs.freeSlots[n-1]
		cs.freeSlots = cs.freeSlots[:n-1]
	} else {
		index = cs.nextIndex
		cs.nextIndex++
		if index/pageSize >= len(cs.pages) {
			cs.pages = append(cs.pages, &page[T]{})
		}
	}

	p := cs.pages[index/pageSize]
	p.items[index%pageSize] = value
	p.occupied |= uint64(1) << uint(index%pageSize)
	cs.count++
	return index
}

// Get returns a pointer to the component in the given slot, or nil.
func (cs *pagedStorage[T]) Get(index int) any {
	p, bit, ok := cs.locate(index)
	if !ok || p.occupied&bit == 0 {
		return nil
	}
	return &p.items[index%pageSize]
}

// Delete clears a slot and makes it available for reuse.
func (cs *pagedStorage[T]) Delete(index int) {
	p, bit, ok := cs.locate(index)
	if !ok || p.occupied&bit == 0 {
		return
	}
	var zero T
	p.items[index%pageSize] = zero
	p.occupied &^= bit
	cs.freeSlots = append(cs.freeSlots, index)
	cs.count--
}

// Has reports whether the slot is occupied.
func (cs *pagedStorage[T]) Has(index int) bool {
	p, bit, ok := cs.locate(index)
	return ok && p.occupied&bit != 0
}

// Len returns the number of live components.
func (cs *pagedStorage[T]) Len() int {
	return cs.count
}

// Iter yields occupied slots in ascending order.
func (cs *pagedStorage[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for pi, p := range cs.pages {
			mask := p.occupied
			for mask != 0 {
				slot := bits.TrailingZeros64(mask)
				mask &^= uint64(1) << uint(slot)
				if !yield(pi*pageSize + slot) {
					return
				}
			}
		}
	}
}
