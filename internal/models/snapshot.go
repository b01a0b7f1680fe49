package models

// SnapshotStatus represents the lifecycle of an allocation snapshot.
type SnapshotStatus string

const (
	SnapshotStatusPending  SnapshotStatus = "pending"
	SnapshotStatusFetching SnapshotStatus = "fetching"
	SnapshotStatusReady    SnapshotStatus = "ready"
	SnapshotStatusError    SnapshotStatus = "error"
)

// Snapshot describes one fetch of the campus timetabling feed.
type Snapshot struct {
	ID          string         `json:"id"`
	Status      SnapshotStatus `json:"status"`
	Progress    float64        `json:"progress"` // 0-100
	Source      string         `json:"source"`   // "api" or "cache"
	FetchedAt   int64          `json:"fetchedAt,omitempty"` // Unix ms
	Center      Center         `json:"center,omitempty"`
	RoomCount   int            `json:"roomCount,omitempty"`
	CourseCount int            `json:"courseCount,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
}

// NewSnapshot creates a pending snapshot.
func NewSnapshot(id, source string) *Snapshot {
	return &Snapshot{
		ID:     id,
		Status: SnapshotStatusPending,
		Source: source,
		Errors: make([]string, 0),
	}
}
