package ecs

import "iter"

// Query wraps a View with per-frame caching. The Scheduler calls Execute on
// every Query field of a system right before that system runs.
type Query[T any] struct {
	view               *View[T]
	storage            *Storage
	cachedArchetypes   []*Archetype
	lastArchetypeCount int

	cachedEntities   []EntityId
	cachedComponents []T
	cacheValid       bool
}

// NewQuery creates a Query outside of a Scheduler.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init binds the Query to a storage. Called by the Scheduler during Register.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.cachedArchetypes = nil
	q.lastArchetypeCount = -1
	q.cacheValid = false
}

// Execute rebuilds the entity and component caches.
func (q *Query[T]) Execute() {
	if currentCount := len(q.storage.order); currentCount != q.lastArchetypeCount {
		q.cachedArchetypes = q.cachedArchetypes[:0]
		for _, archetype := range q.storage.order {
			if q.view.matchesArchetype(archetype) {
				q.cachedArchetypes = append(q.cachedArchetypes, archetype)
			}
		}
		q.lastArchetypeCount = currentCount
	}

	q.cachedEntities = q.cachedEntities[:0]
	q.cachedComponents = q.cachedComponents[:0]

	for _, archetype := range q.cachedArchetypes {
		for id, item := range q.view.iterArchetype(archetype) {
			q.cachedEntities = append(q.cachedEntities, id)
			q.cachedComponents = append(q.cachedComponents, item)
		}
	}

	q.cacheValid = true
}

// Len returns the number of matched entities from the last Execute.
func (q *Query[T]) Len() int {
	if !q.cacheValid {
		panic("Query.Len() called before Query.Execute()")
	}
	return len(q.cachedEntities)
}

// Iter returns an iterator over entity IDs and component data.
// Panics if Execute() has not been called.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	if !q.cacheValid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(EntityId, T) bool) {
		for i := range q.cachedEntities {
			if !yield(q.cachedEntities[i], q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over component data only.
// Panics if Execute() has not been called.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.cacheValid {
		panic("Query.Values() called before Query.Execute()")
	}

	return func(yield func(T) bool) {
		for i := range q.cachedComponents {
			if !yield(q.cachedComponents[i]) {
				return
			}
		}
	}
}
