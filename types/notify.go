package types

const (
	NotifyTypeUploadProgress = "upload_progress"
	NotifyTypeUploadEnd      = "upload_end"
)

// Notification represents a notification message structure
type Notification struct {
	Type    string         `json:"type,omitempty"` // e.g. "upload_progress"
	Title   string         `json:"title,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// NotifyHub is anything that can fan a notification out to listeners.
type NotifyHub interface {
	Broadcast(notification *Notification)
}
