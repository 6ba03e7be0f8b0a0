package presenter

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/moyoez/diary-upload-go/notify"
	"github.com/moyoez/diary-upload-go/transfer"
	"github.com/moyoez/diary-upload-go/types"
)

var (
	_ transfer.Presenter = (*Log)(nil)
	_ transfer.Presenter = (*Notify)(nil)
	_ transfer.Presenter = Multi(nil)
)

type captureHub struct {
	mu   sync.Mutex
	seen []*types.Notification
}

func (h *captureHub) Broadcast(n *types.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, n)
}

func TestNotifyTagsEffectsWithSession(t *testing.T) {
	h := &captureHub{}
	notify.SetHub(h)
	defer notify.SetHub(nil)

	p := NewNotify("local-1", "entries.csv")
	p.SetVisible(true)
	p.SetValue(42)
	p.SetText("Uploading: 42%")

	if len(h.seen) != 3 {
		t.Fatalf("got %d notifications, want 3", len(h.seen))
	}
	for _, n := range h.seen {
		if n.Type != types.NotifyTypeUploadProgress || n.Data["sessionId"] != "local-1" {
			t.Errorf("unexpected notification: %+v", n)
		}
	}
	if h.seen[1].Data["value"] != 42.0 {
		t.Errorf("value = %v, want 42", h.seen[1].Data["value"])
	}
	if h.seen[2].Data["text"] != "Uploading: 42%" {
		t.Errorf("text = %v", h.seen[2].Data["text"])
	}
}

func TestLogWritesStatusText(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	p := NewLog(logger, "entries.csv")
	p.SetVisible(true)
	p.SetValue(10)
	p.SetText("Upload completed!")

	out := buf.String()
	if !strings.Contains(out, "Upload completed!") || !strings.Contains(out, "entries.csv") {
		t.Errorf("log output missing status text: %q", out)
	}
}

type countingPresenter struct{ visible, values, texts int }

func (c *countingPresenter) SetVisible(bool)  { c.visible++ }
func (c *countingPresenter) SetValue(float64) { c.values++ }
func (c *countingPresenter) SetText(string)   { c.texts++ }

func TestMultiFansOut(t *testing.T) {
	a, b := &countingPresenter{}, &countingPresenter{}
	m := Multi{a, b}
	m.SetVisible(true)
	m.SetValue(1)
	m.SetText("x")
	for _, c := range []*countingPresenter{a, b} {
		if c.visible != 1 || c.values != 1 || c.texts != 1 {
			t.Errorf("unexpected counts: %+v", c)
		}
	}
}
