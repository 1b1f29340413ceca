package models

// TaskEvent is a task lifecycle event published to Kafka.
type TaskEvent struct {
	EventID   string `json:"event_id"`  // Unique event ID
	Timestamp int64  `json:"timestamp"` // Unix timestamp
	TaskID    string `json:"task_id"`   // Affected task
	UserID    string `json:"user_id"`   // Acting user
	Operation string `json:"operation"` // "created", "updated" or "deleted"
}
