package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/char5742/nspire-input/internal/event"
	"github.com/char5742/nspire-input/internal/logging"
)

const (
	clientBuffer = 64
	writeTimeout = time.Second
)

// Hub は受け取ったイベントを websocket の購読者に配信する
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	log     *zerolog.Logger
}

type client struct {
	ch      chan event.Event
	dropped int
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     logging.Logger("stream"),
	}
}

// Dispatch は全購読者に送る。受信が追いつかない購読者の分は捨てる
func (h *Hub) Dispatch(ev event.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.ch <- ev:
		default:
			c.dropped++
		}
	}
}

// Clients は接続中の購読者数を返す
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add() *client {
	c := &client{ch: make(chan event.Event, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	if c.dropped > 0 {
		h.log.Debug().Int("dropped", c.dropped).Msg("配信できなかったイベントがありました")
	}
}

// ServeHTTP は接続を websocket に切り替えてイベントを JSON で送り続ける
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket の接続に失敗しました")
		return
	}
	defer conn.CloseNow()

	// 受信はしない。切断の検知だけに使う
	ctx := conn.CloseRead(r.Context())

	c := h.add()
	defer h.remove(c)
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("購読を開始しました")

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.ch:
			if err := h.write(ctx, conn, ev); err != nil {
				h.log.Debug().Err(err).Msg("購読を終了しました")
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, ev event.Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}
