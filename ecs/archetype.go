package ecs

import (
	"iter"
	"reflect"
	"slices"
)

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// Archetype stores every entity that has exactly one particular set of component types.
type Archetype struct {
	id       uint32
	types    []reflect.Type
	columns  map[reflect.Type]int
	storages []iComponentStorage
	registry *ComponentRegistry
}

// NewArchetype creates an archetype for the given sorted component types.
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:       id,
		types:    types,
		columns:  make(map[reflect.Type]int, len(types)),
		registry: registry,
	}
	for idx, typ := range types {
		a.columns[typ] = idx
	}
	a.reset()
	return a
}

func (a *Archetype) reset() {
	a.storages = make([]iComponentStorage, len(a.types))
	for idx, typ := range a.types {
		factory := a.registry.getFactory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.storages[idx] = factory()
	}
}

// Spawn appends one entity and returns its slot index.
// Every column receives exactly one component so slots stay aligned.
func (a *Archetype) Spawn(components []any) uint32 {
	var slot int
	for _, comp := range components {
		compType := reflect.TypeOf(comp)
		if compType.Kind() == reflect.Ptr {
			compType = compType.Elem()
		}
		if idx, ok := a.columns[compType]; ok {
			slot = a.storages[idx].Append(comp)
		}
	}
	return uint32(slot)
}

// GetComponent returns a pointer to the component of the given type, or nil.
func (a *Archetype) GetComponent(entityIndex uint32, compType reflect.Type) any {
	idx, ok := a.columns[compType]
	if !ok {
		return nil
	}
	return a.storages[idx].Get(int(entityIndex))
}

// Delete frees the entity's slot in every column.
func (a *Archetype) Delete(entityIndex uint32) {
	for _, storage := range a.storages {
		storage.Delete(int(entityIndex))
	}
}

// Alive reports whether the slot currently holds an entity.
func (a *Archetype) Alive(entityIndex uint32) bool {
	if len(a.storages) == 0 {
		return false
	}
	return a.storages[0].Has(int(entityIndex))
}

// HasComponent checks if this archetype has the given component type
func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return slices.Contains(a.types, compType)
}

// ID returns the archetype's unique identifier
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the sorted component types for this archetype
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of live entities.
func (a *Archetype) Len() int {
	if len(a.storages) == 0 {
		return 0
	}
	return a.storages[0].Len()
}

// Iter returns an iterator over all live EntityIds in this archetype
func (a *Archetype) Iter() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		if len(a.storages) == 0 {
			return
		}
		for index := range a.storages[0].Iter() {
			if !yield(NewEntityId(a.id, uint32(index))) {
				return
			}
		}
	}
}
