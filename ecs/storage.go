package ecs

import (
	"reflect"
	"sort"
	"unsafe"

	"github.com/kamstrup/intmap"
)

// Storage owns every archetype and singleton of one world.
type Storage struct {
	archetypes map[uint32]*Archetype
	order      []*Archetype
	registry   *ComponentRegistry

	singletons     *intmap.Map[int, *singletonEntry]
	singletonTypes []reflect.Type
}

type singletonEntry struct {
	typ     reflect.Type
	dataPtr unsafe.Pointer
}

// NewStorage creates a new ECS storage with the given component registry
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: make(map[uint32]*Archetype),
		registry:   registry,
		singletons: intmap.New[int, *singletonEntry](16),
	}
}

// GetArchetype returns the archetype for the given component set, if it exists
func (s *Storage) GetArchetype(components ...any) *Archetype {
	types := extractComponentTypes(components)
	return s.archetypes[hashTypesToUint32(types)]
}

// Archetypes returns archetypes in creation order.
func (s *Storage) Archetypes() []*Archetype {
	return s.order
}

func (s *Storage) archetypeFor(types []reflect.Type) *Archetype {
	archetypeId := hashTypesToUint32(types)
	archetype, exists := s.archetypes[archetypeId]
	if !exists {
		archetype = NewArchetype(archetypeId, types, s.registry)
		s.archetypes[archetypeId] = archetype
		s.order = append(s.order, archetype)
	}
	return archetype
}

// Spawn creates a new entity with the provided components
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	archetype := s.archetypeFor(extractComponentTypes(components))
	entityIndex := archetype.Spawn(components)
	return NewEntityId(archetype.id, entityIndex)
}

// Delete removes all data related to the entity ID
func (s *Storage) Delete(id EntityId) {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return
	}
	archetype.Delete(id.Index())
}

// Alive reports whether the entity still exists.
func (s *Storage) Alive(id EntityId) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	return ok && archetype.Alive(id.Index())
}

// Clear deletes every entity but keeps archetypes and singletons.
// Slot allocation restarts from zero, so respawning in the same order
// yields the same entity IDs.
func (s *Storage) Clear() {
	for _, archetype := range s.order {
		archetype.reset()
	}
}

// GetComponent returns the component for the given entity ID and component type
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return nil
	}
	return archetype.GetComponent(id.Index(), compType)
}

// HasComponent checks if an entity has a specific component type
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return false
	}
	return archetype.HasComponent(compType)
}

// AddSingleton stores value as the single instance of its type, replacing any
// previous instance in place so outstanding pointers observe the new value.
func (s *Storage) AddSingleton(value any) {
	typ := reflect.TypeOf(value)
	if entry := s.getSingletonEntry(typ); entry != nil {
		reflect.NewAt(typ, entry.dataPtr).Elem().Set(reflect.ValueOf(value))
		return
	}

	ptr := reflect.New(typ)
	ptr.Elem().Set(reflect.ValueOf(value))
	s.singletons.Put(typeId(typ), &singletonEntry{
		typ:     typ,
		dataPtr: ptr.UnsafePointer(),
	})
	s.singletonTypes = append(s.singletonTypes, typ)
}

// ReadSingleton points *target (a **T) at the stored singleton of type T.
// It returns false if no such singleton exists.
func (s *Storage) ReadSingleton(target any) bool {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton target must be a pointer to a pointer")
	}
	typ := v.Elem().Type().Elem()
	entry := s.getSingletonEntry(typ)
	if entry == nil {
		return false
	}
	v.Elem().Set(reflect.NewAt(typ, entry.dataPtr))
	return true
}

func (s *Storage) getSingletonEntry(typ reflect.Type) *singletonEntry {
	entry, ok := s.singletons.Get(typeId(typ))
	if !ok {
		return nil
	}
	return entry
}

// extractComponentTypes extracts and sorts component types from a slice of components
func extractComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		compType := reflect.TypeOf(comp)
		if compType.Kind() == reflect.Ptr {
			compType = compType.Elem()
		}

		switch compType.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
			panic("components cannot be pointers, maps, channels, or functions")
		}

		types = append(types, compType)
	}
	sort.Sort(byTypeName(types))
	return types
}

func typeId(t reflect.Type) int {
	ptr := (*iface)(unsafe.Pointer(&t)).data
	return int(uintptr(ptr))
}

// hashTypesToUint32 is FNV-1a over the type descriptor addresses of a sorted type list.
func hashTypesToUint32(types []reflect.Type) uint32 {
	var h uint32 = 2166136261
	const prime uint32 = 16777619

	for _, t := range types {
		addr := uint64(typeId(t))
		h ^= uint32(addr) ^ uint32(addr>>32)
		h *= prime
	}

	return h
}

// ComponentReader is anything that can resolve an entity's component by type.
type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the entity's T component, or nil if it has none.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	comp := reader.GetComponent(entityId, reflect.TypeFor[T]())
	if comp == nil {
		return nil
	}
	return comp.(*T)
}
