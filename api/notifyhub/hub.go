package notifyhub

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/moyoez/diary-upload-go/tool"
	"github.com/moyoez/diary-upload-go/types"
)

const sendQueueSize = 64

// writeWait bounds a single websocket write. A listener that stays blocked
// past it is dropped.
var writeWait = 2 * time.Second

// listener is one websocket connection with its own outgoing queue, so a slow
// reader never holds up Broadcast.
type listener struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (l *listener) stop() {
	l.once.Do(func() { close(l.done) })
}

// Hub holds WebSocket connections and broadcasts upload notifications to all clients.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]*listener
}

// New creates a new notify hub.
func New() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]*listener),
	}
}

// Register adds a WebSocket connection to the hub and starts its writer.
func (h *Hub) Register(conn *websocket.Conn) {
	l := &listener{
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.conns[conn] = l
	h.mu.Unlock()
	go h.writeLoop(l)
}

// Unregister removes a WebSocket connection from the hub and stops its writer.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	l, ok := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if ok {
		l.stop()
	}
}

// Len returns the number of connected listeners.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast queues the notification as JSON for every registered connection.
// It never blocks: a listener whose queue is full misses the message.
// Implements types.NotifyHub.
func (h *Hub) Broadcast(notification *types.Notification) {
	if notification == nil {
		return
	}
	payload, err := sonic.Marshal(notification)
	if err != nil {
		tool.DefaultLogger.Errorf("[NotifyWS] failed to marshal notification: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, l := range h.conns {
		select {
		case l.send <- payload:
		default:
			tool.DefaultLogger.Debugf("[NotifyWS] listener %s is behind, dropping %s", l.conn.RemoteAddr(), notification.Type)
		}
	}
}

// writeLoop is the only writer of l.conn. On a failed or timed out write it
// drops the listener and closes the connection, which also ends the read loop
// in HandleNotifyWS.
func (h *Hub) writeLoop(l *listener) {
	for {
		select {
		case <-l.done:
			return
		case payload := <-l.send:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				tool.DefaultLogger.Debugf("[NotifyWS] dropping listener %s: %v", l.conn.RemoteAddr(), err)
				h.Unregister(l.conn)
				_ = l.conn.Close()
				return
			}
		}
	}
}
