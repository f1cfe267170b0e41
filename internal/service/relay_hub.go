package service

import (
	"encoding/json"
	"messenger_backend/pkg/logger"
	"messenger_backend/pkg/monitoring"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RelayEvent 广播通道上的事件，发布后原样转发给所有监听者
// receiver 字段不做服务端过滤，这是约定的全量广播语义
type RelayEvent struct {
	Sender   uint   `json:"sender"`
	Receiver uint   `json:"receiver"`
	Content  string `json:"content"`
	Media    string `json:"media"`
}

type RelayClient struct {
	Hub    *RelayHub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID uint
}

func (c *RelayClient) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.Uint("userId", c.UserID))
			}
			break
		}

		var evt RelayEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			continue
		}
		monitoring.RelayEventCounter.WithLabelValues("in").Inc()

		c.Hub.Publish(evt)
	}
}

func (c *RelayClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// RelayHub 进程内的全量广播通道
// 所有事件经由单一 broadcast 通道分发，所有监听者以相同的相对顺序收到事件
// 不落库、不重放、断线后不补发
type RelayHub struct {
	mu         sync.RWMutex
	clients    map[*RelayClient]bool
	broadcast  chan []byte
	register   chan *RelayClient
	unregister chan *RelayClient
	done       chan struct{}
	stopOnce   sync.Once
}

func NewRelayHub() *RelayHub {
	return &RelayHub{
		clients:    make(map[*RelayClient]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *RelayClient),
		unregister: make(chan *RelayClient),
		done:       make(chan struct{}),
	}
}

func (h *RelayHub) Run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			// 与 Stop 竞争时不再接纳新监听者
			select {
			case <-h.done:
				close(client.Send)
				client.Conn.Close()
				continue
			default:
			}
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			monitoring.RelayListeners.Inc()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				monitoring.RelayListeners.Dec()
			}
			h.mu.Unlock()

		case payload := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- payload:
					monitoring.RelayEventCounter.WithLabelValues("out").Inc()
				default:
					// 写缓冲已满的慢监听者直接丢弃本条事件
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish 向所有当前注册的监听者（含发布者自身）投递事件
func (h *RelayHub) Publish(evt RelayEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
	}
}

func (h *RelayHub) ListenerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop 终止 Run 循环、关闭所有连接并清空监听者集合
// 之后的注册与发布都会被丢弃，重复调用无副作用
func (h *RelayHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		closed := 0
		for client := range h.clients {
			close(client.Send)
			delete(h.clients, client)
			closed++
		}
		h.mu.Unlock()

		monitoring.RelayListeners.Set(0)
		logger.Log.Info("RelayHub stopped", zap.Int("closedConnections", closed))
	})
}

func ServeRelay(hub *RelayHub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}
	client := &RelayClient{
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: userID,
	}
	select {
	case client.Hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
