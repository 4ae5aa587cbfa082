package watcher

import "time"

// EventType is the kind of file system change.
type EventType int

const (
	// EventAdded is emitted when a new file has settled.
	EventAdded EventType = iota
	// EventModified is emitted when a known file changed and settled again.
	EventModified
	// EventRemoved is emitted when a file is deleted or moved away.
	EventRemoved
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is a settled file system change.
type Event struct {
	Type EventType
	Path string
	// Size and ModTime are zero for removals.
	Size    int64
	ModTime time.Time
}
