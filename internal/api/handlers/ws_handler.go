package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/kadrohq/kadro/internal/services"
)

// WSHandler streams live interview turns to admin monitors. Turns are
// published to Redis by ConversationService as they are persisted; this
// handler only fans them out.
type WSHandler struct {
	interviews services.InterviewService
	redis      *redis.Client
	upgrader   websocket.Upgrader
}

func NewWSHandler(interviews services.InterviewService, rdb *redis.Client) *WSHandler {
	return &WSHandler{
		interviews: interviews,
		redis:      rdb,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (h *WSHandler) MonitorWS(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// the interview must exist before anyone can watch it
	if _, err := h.interviews.Get(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.redis.Subscribe(ctx, services.TurnChannel(id))
	defer pubsub.Close()

	// reader goroutine only surfaces disconnects; monitors never send data
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		for {
			if _, _, rerr := conn.ReadMessage(); rerr != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	msgs := pubsub.Channel()
	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			wc.mu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			wc.mu.Unlock()
			if err != nil {
				return
			}
		case m, ok := <-msgs:
			if !ok {
				return
			}
			if err := wc.writeText([]byte(m.Payload)); err != nil {
				return
			}
		}
	}
}
