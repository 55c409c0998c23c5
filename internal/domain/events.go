package domain

type TaskEventType string

const (
	TaskEventCreated TaskEventType = "created"
	TaskEventUpdated TaskEventType = "updated"
	TaskEventDeleted TaskEventType = "deleted"
)

// TaskEvent describes a successful mutation. Deleted events carry only the ID.
type TaskEvent struct {
	Type TaskEventType `json:"type"`
	Task Task          `json:"task"`
}
