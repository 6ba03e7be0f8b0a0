package notify

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/moyoez/diary-upload-go/tool"
	"github.com/moyoez/diary-upload-go/types"
)

// NotifyWriteChunkSize is the chunk size when writing payload to Unix socket (avoid large single write).
const NotifyWriteChunkSize = 32 * 1024 // 32KB

var (
	// DefaultUnixSocketPath is where a desktop companion may listen for events.
	DefaultUnixSocketPath = "/tmp/diary-upload-notify.sock"
	UnixSocketTimeout     = 3 * time.Second
	UseNotify             = false

	hubMu sync.RWMutex
	hub   types.NotifyHub
)

// SetUseNotify sets whether notifications are also written to the Unix socket.
func SetUseNotify(use bool) {
	UseNotify = use
}

// SetHub sets the in-process hub (the websocket fan-out of the control API).
func SetHub(h types.NotifyHub) {
	hubMu.Lock()
	defer hubMu.Unlock()
	hub = h
}

func getHub() types.NotifyHub {
	hubMu.RLock()
	defer hubMu.RUnlock()
	return hub
}

// Publish hands notification to the hub, if one is set, and to the Unix
// socket when UseNotify is on. Socket failures are logged, not returned:
// a missing listener must not disturb an upload.
func Publish(notification *types.Notification) {
	if notification == nil {
		return
	}
	if h := getHub(); h != nil {
		h.Broadcast(notification)
	}
	if !UseNotify {
		return
	}
	if err := SendNotification(notification, DefaultUnixSocketPath); err != nil {
		tool.DefaultLogger.Debugf("[Notify] socket delivery skipped: %v", err)
	}
}

// SendNotification sends notification via Unix Domain Socket as a
// little-endian uint32 length followed by the JSON payload.
func SendNotification(notification *types.Notification, socketPath string) error {
	if socketPath == "" {
		socketPath = DefaultUnixSocketPath
	}
	if _, err := os.Stat(socketPath); os.IsNotExist(err) {
		return fmt.Errorf("unix socket not found: %s", socketPath)
	}

	var payload []byte
	var err error
	if notification != nil {
		payload, err = sonic.Marshal(notification)
		if err != nil {
			return fmt.Errorf("failed to serialize notification data: %v", err)
		}
	} else {
		payload = []byte("{}")
	}
	if len(payload) > NotifyWriteChunkSize {
		return fmt.Errorf("notification payload too large: %d bytes (max %d)", len(payload), NotifyWriteChunkSize)
	}

	conn, err := net.DialTimeout("unix", socketPath, UnixSocketTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to Unix socket %s: %v", socketPath, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close Unix socket connection: %v", err)
		}
	}()

	if err := conn.SetDeadline(time.Now().Add(UnixSocketTimeout)); err != nil {
		tool.DefaultLogger.Errorf("Failed to set deadline: %v", err)
	}

	lengthBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lengthBuf, uint32(len(payload)))
	if _, err := conn.Write(lengthBuf); err != nil {
		return fmt.Errorf("failed to write length to Unix socket: %v", err)
	}
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("failed to write payload to Unix socket: %v", err)
	}

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read response from Unix socket: %v", err)
	}
	if n > 0 {
		var response map[string]any
		if err := sonic.Unmarshal(buf[:n], &response); err == nil {
			if errMsg, ok := response["error"].(string); ok && errMsg != "" {
				return fmt.Errorf("server returned error: %s", errMsg)
			}
		}
	}

	if notification != nil {
		tool.DefaultLogger.Debugf("[UnixSocket] Notification sent: %s", notification.Type)
	}
	return nil
}

// SendUploadEndNotification announces the terminal state of a session.
func SendUploadEndNotification(snap types.UploadSnapshot) {
	title := "Upload Completed"
	message := fmt.Sprintf("%s was uploaded", snap.FileName)
	if snap.Status != "completed" {
		title = "Upload Failed"
		message = fmt.Sprintf("%s: %s", snap.FileName, snap.Error)
	}
	Publish(&types.Notification{
		Type:    types.NotifyTypeUploadEnd,
		Title:   title,
		Message: message,
		Data: map[string]any{
			"sessionId": snap.SessionId,
			"uploadId":  snap.UploadId,
			"status":    snap.Status,
			"errorKind": snap.ErrorKind,
		},
	})
}
