package ecs

import (
	"reflect"
	"strings"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type queryExecutor interface {
	Execute()
}

type registeredSystem struct {
	system  System
	queries []queryExecutor
	stats   *systemStatsInternal
}

// Scheduler runs registered systems in registration order.
type Scheduler struct {
	storage *Storage
	systems []registeredSystem
	tick    uint64
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{storage: storage}
}

// Register adds a system and initializes its Query and Singleton fields.
func (s *Scheduler) Register(system System) {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}

	s.systems = append(s.systems, registeredSystem{
		system:  system,
		queries: s.initializeFields(system),
		stats: &systemStatsInternal{
			name:        systemType.Name(),
			minDuration: time.Duration(1<<63 - 1),
		},
	})
}

func (s *Scheduler) initializeFields(system System) []queryExecutor {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}
	if systemValue.Kind() != reflect.Struct {
		return nil
	}

	var queries []queryExecutor
	systemType := systemValue.Type()

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		typeName := field.Type().Name()
		isQuery := strings.HasPrefix(typeName, "Query[")
		if !isQuery && !strings.HasPrefix(typeName, "Singleton[") {
			continue
		}

		initMethod := field.Addr().MethodByName("Init")
		if !initMethod.IsValid() {
			panic("Init method not found on field: " + systemType.Field(i).Name)
		}
		initMethod.Call([]reflect.Value{reflect.ValueOf(s.storage)})

		if isQuery {
			queries = append(queries, field.Addr().Interface().(queryExecutor))
		}
	}

	return queries
}

// Tick returns how many frames have run.
func (s *Scheduler) Tick() uint64 {
	return s.tick
}

// Once executes every registered system once and then flushes queued commands.
func (s *Scheduler) Once(dt float64) {
	s.tick++
	frame := newUpdateFrame(dt, s.tick, s.storage)

	for _, entry := range s.systems {
		start := time.Now()
		for _, q := range entry.queries {
			q.Execute()
		}
		entry.system.Execute(frame)
		duration := time.Since(start)

		stats := entry.stats
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration
		stats.minDuration = min(stats.minDuration, duration)
		stats.maxDuration = max(stats.maxDuration, duration)
	}

	frame.Commands.Flush(s.storage)
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systems)),
	}

	for i, entry := range s.systems {
		internal := entry.stats
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		stats.TotalExecutions += internal.executionCount
	}

	return stats
}
