package presenter

import (
	"github.com/moyoez/diary-upload-go/notify"
	"github.com/moyoez/diary-upload-go/types"
)

// Notify publishes every effect as an upload_progress notification tagged
// with the local session id, so websocket listeners can mirror the bar.
type Notify struct {
	sessionId string
	fileName  string
}

func NewNotify(sessionId, fileName string) *Notify {
	return &Notify{sessionId: sessionId, fileName: fileName}
}

func (p *Notify) publish(key string, value any) {
	notify.Publish(&types.Notification{
		Type:  types.NotifyTypeUploadProgress,
		Title: p.fileName,
		Data: map[string]any{
			"sessionId": p.sessionId,
			key:         value,
		},
	})
}

func (p *Notify) SetVisible(visible bool) { p.publish("visible", visible) }

func (p *Notify) SetValue(percent float64) { p.publish("value", percent) }

func (p *Notify) SetText(text string) { p.publish("text", text) }
