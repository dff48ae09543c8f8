package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/flappy/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityIdEncoding(t *testing.T) {
	id := ecs.NewEntityId(12345, 67890)
	assert.Equal(t, uint32(12345), id.ArchetypeId())
	assert.Equal(t, uint32(67890), id.Index())

	id = ecs.NewEntityId(0xFFFFFFFF, 0xFFFFFFFF)
	assert.Equal(t, uint32(0xFFFFFFFF), id.ArchetypeId())
	assert.Equal(t, uint32(0xFFFFFFFF), id.Index())
}

func TestSpawnAndGet(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 3, Y: 4}, &Velocity{DY: -7}, Name("bird"))
	require.True(t, storage.Alive(id))

	pos := ecs.ReadComponent[Position](storage, id)
	require.NotNil(t, pos)
	assert.Equal(t, 3.0, pos.X)
	assert.Equal(t, 4.0, pos.Y)

	vel := ecs.ReadComponent[Velocity](storage, id)
	require.NotNil(t, vel)
	assert.Equal(t, -7.0, vel.DY)

	assert.Nil(t, ecs.ReadComponent[Health](storage, id))
	assert.True(t, storage.HasComponent(id, reflect.TypeFor[Name]()))
	assert.False(t, storage.HasComponent(id, reflect.TypeFor[Health]()))
}

func TestComponentOrderDoesNotMatter(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	a := storage.Spawn(Position{}, Velocity{})
	b := storage.Spawn(Velocity{}, Position{})

	assert.Equal(t, a.ArchetypeId(), b.ArchetypeId())
	assert.NotEqual(t, a.Index(), b.Index())
	assert.Len(t, storage.Archetypes(), 1)
}

func TestComponentPointersSurviveGrowth(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	first := storage.Spawn(Position{X: 1})
	pos := ecs.ReadComponent[Position](storage, first)

	for i := 0; i < 500; i++ {
		storage.Spawn(Position{X: float64(i)})
	}

	pos.X = 99
	assert.Equal(t, 99.0, ecs.ReadComponent[Position](storage, first).X)
}

func TestDeleteReusesSlot(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	a := storage.Spawn(Position{X: 1})
	storage.Spawn(Position{X: 2})

	storage.Delete(a)
	assert.False(t, storage.Alive(a))
	assert.Nil(t, ecs.ReadComponent[Position](storage, a))

	c := storage.Spawn(Position{X: 3})
	assert.Equal(t, a, c)
	assert.Equal(t, 3.0, ecs.ReadComponent[Position](storage, c).X)

	// deleting twice or deleting an unknown entity is a no-op
	storage.Delete(c)
	storage.Delete(c)
	storage.Delete(ecs.NewEntityId(42, 0))
	assert.Equal(t, 1, storage.CollectStats().TotalEntityCount)
}

func TestClearRestartsSlots(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	first := storage.Spawn(Position{X: 1})
	second := storage.Spawn(Position{X: 2})
	storage.Delete(first)

	storage.Clear()
	assert.False(t, storage.Alive(second))
	assert.Equal(t, 0, storage.CollectStats().TotalEntityCount)

	again := storage.Spawn(Position{X: 5})
	assert.Equal(t, first, again)
}

func TestSpawnPanics(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { storage.Spawn() })
	assert.Panics(t, func() { storage.Spawn(Counter{}) }, "unregistered component")
	assert.Panics(t, func() { storage.Spawn(map[string]int{}) })
}

func TestReadSingleton(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	var counter *Counter
	assert.False(t, storage.ReadSingleton(&counter))

	storage.AddSingleton(Counter{Ticks: 3})
	require.True(t, storage.ReadSingleton(&counter))
	assert.Equal(t, 3, counter.Ticks)

	counter.Ticks++
	var again *Counter
	require.True(t, storage.ReadSingleton(&again))
	assert.Same(t, counter, again)
	assert.Equal(t, 4, again.Ticks)

	storage.AddSingleton(Counter{Ticks: 10})
	assert.Equal(t, 10, counter.Ticks, "replacing a singleton keeps its address")
}
