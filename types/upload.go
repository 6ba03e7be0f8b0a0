package types

import "time"

// UploadSubmitResponse is the body returned by the upload endpoint.
// Exactly one of UploadId / Error is expected to be set.
type UploadSubmitResponse struct {
	UploadId string `json:"upload_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UploadProgressResponse is the body returned by the progress endpoint.
type UploadProgressResponse struct {
	Progress float64 `json:"progress"`
	Status   string  `json:"status"`
	Error    string  `json:"error,omitempty"`
}

// UploadSnapshot is a read-only copy of a session's state.
type UploadSnapshot struct {
	SessionId string     `json:"sessionId"`
	UploadId  string     `json:"uploadId,omitempty"`
	FileName  string     `json:"fileName"`
	Status    string     `json:"status"`
	Progress  float64    `json:"progress"`
	Polls     int        `json:"polls"`
	ErrorKind string     `json:"errorKind,omitempty"`
	Error     string     `json:"error,omitempty"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// UploadStartResponse is returned by the control API once a session is started.
type UploadStartResponse struct {
	SessionId string `json:"sessionId"`
	StatusUrl string `json:"statusUrl"`
}

// FileCheckResult describes a local file that passed pre-submit validation.
type FileCheckResult struct {
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	FileType string `json:"fileType"`
}
