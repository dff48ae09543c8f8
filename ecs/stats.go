package ecs

// StorageStats is a point-in-time summary of a Storage.
type StorageStats struct {
	ArchetypeCount     int
	TotalEntityCount   int
	SingletonCount     int
	ArchetypeBreakdown []ArchetypeStats
	SingletonTypes     []string
}

// ArchetypeStats describes one archetype.
type ArchetypeStats struct {
	ID             uint32
	ComponentTypes []string
	EntityCount    int
}

// CollectStats walks the storage and counts entities per archetype.
// Archetypes that have been created but are currently empty are still listed.
func (s *Storage) CollectStats() *StorageStats {
	stats := &StorageStats{
		ArchetypeCount: len(s.order),
		SingletonCount: s.singletons.Len(),
	}

	for _, archetype := range s.order {
		names := make([]string, len(archetype.types))
		for i, typ := range archetype.types {
			names[i] = typ.String()
		}
		count := archetype.Len()
		stats.TotalEntityCount += count
		stats.ArchetypeBreakdown = append(stats.ArchetypeBreakdown, ArchetypeStats{
			ID:             archetype.id,
			ComponentTypes: names,
			EntityCount:    count,
		})
	}

	for _, typ := range s.singletonTypes {
		stats.SingletonTypes = append(stats.SingletonTypes, typ.String())
	}

	return stats
}
