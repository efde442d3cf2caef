package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ScheduleSnapshotKey returns the cache key holding the latest schedule snapshot.
func (r *CacheKeyStruct) ScheduleSnapshotKey() string {
	return "schedule:snapshot:latest"
}

// RunSnapshotKey returns the cache key for the snapshot produced by one ingest run.
// The persist worker reads it back before writing to PostgreSQL.
func (r *CacheKeyStruct) RunSnapshotKey(runID string) string {
	return fmt.Sprintf("schedule:snapshot:run:%s", runID)
}

// RefreshLockKey returns the key used to keep two instances from ingesting at once.
func (r *CacheKeyStruct) RefreshLockKey() string {
	return "schedule:refresh:lock"
}

// IngestProgressChannel returns the Redis PubSub channel carrying ingestion progress.
func (r *CacheKeyStruct) IngestProgressChannel() string {
	return "schedule:ingest:progress"
}

var CacheKey = NewCacheKeyStruct()
