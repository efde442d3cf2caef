package config

type WorkerKeyStruct struct {
	RefreshQueue         string
	PersistSnapshotQueue string
}

var WorkerKey = &WorkerKeyStruct{
	RefreshQueue:         "refresh_schedule_queue",
	PersistSnapshotQueue: "persist_snapshot_queue",
}
