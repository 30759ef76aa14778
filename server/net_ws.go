package server

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"orbitarena/config"
)

var (
	ErrConnClosed    = errors.New("connection closed")
	ErrSendQueueFull = errors.New("send queue full")
)

// closeGracePeriod 回显关闭帧时的写超时（未配置 write_wait 时使用）
const closeGracePeriod = time.Second

// readKind 一次读取的结果种类
type readKind int

const (
	readData readKind = iota
	readClosed
	readFailed
)

// readResult 读取结果：收到数据 / 对端关闭（带关闭码）/ 传输错误
type readResult struct {
	kind readKind
	data []byte
	code int
	text string
	err  error
}

// ClientConn 单个 WebSocket 连接：读在会话协程中完成，写由独立的 writePump 串行执行
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}

	open      atomic.Bool
	closeOnce sync.Once

	writeWait  time.Duration
	pingPeriod time.Duration
}

// NewClientConn 包装已完成握手的连接
func NewClientConn(ws *websocket.Conn, opts config.TransportConfig) *ClientConn {
	queue := opts.SendQueueSize
	if queue <= 0 {
		queue = 1
	}
	c := &ClientConn{
		ws:         ws,
		send:       make(chan []byte, queue),
		done:       make(chan struct{}),
		writeWait:  opts.WriteWait,
		pingPeriod: opts.PingPeriod,
	}
	c.open.Store(true)

	if opts.MaxMessageSize > 0 {
		ws.SetReadLimit(opts.MaxMessageSize)
	}
	// 关闭帧由会话状态机回显，这里不自动回复
	ws.SetCloseHandler(func(int, string) error { return nil })
	if c.pingPeriod > 0 {
		pongWait := c.pingPeriod * 10 / 9
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})
	}
	return c
}

// Send 将消息压入发送队列（非阻塞）；队列满或连接已关闭时返回错误
func (c *ClientConn) Send(b []byte) error {
	if !c.open.Load() {
		return ErrConnClosed
	}
	select {
	case <-c.done:
		return ErrConnClosed
	case c.send <- b:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// IsOpen 连接是否仍可发送
func (c *ClientConn) IsOpen() bool {
	return c.open.Load()
}

// Close 以 1001 (going away) 关闭连接
func (c *ClientConn) Close() error {
	return c.closeWith(websocket.CloseGoingAway, "")
}

// closeWith 发送关闭帧（code 为 0 时不发送）并释放底层连接，只执行一次
func (c *ClientConn) closeWith(code int, text string) error {
	var err error
	c.closeOnce.Do(func() {
		c.open.Store(false)
		close(c.done)
		if code != 0 {
			wait := c.writeWait
			if wait <= 0 {
				wait = closeGracePeriod
			}
			_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(wait))
		}
		err = c.ws.Close()
	})
	return err
}

// receive 阻塞读取下一条消息
func (c *ClientConn) receive() readResult {
	_, data, err := c.ws.ReadMessage()
	if err == nil {
		return readResult{kind: readData, data: data}
	}
	var ce *websocket.CloseError
	// 1006 表示没有收到关闭帧（对端直接断开），按传输错误处理
	if errors.As(err, &ce) && ce.Code != websocket.CloseAbnormalClosure {
		return readResult{kind: readClosed, code: ce.Code, text: ce.Text, err: err}
	}
	return readResult{kind: readFailed, err: err}
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *ClientConn) writePump() {
	var ping <-chan time.Time
	if c.pingPeriod > 0 {
		ticker := time.NewTicker(c.pingPeriod)
		defer ticker.Stop()
		ping = ticker.C
	}
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.setWriteDeadline()
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				// 写失败：关闭连接，读端随即出错并进入清理流程
				_ = c.closeWith(0, "")
				return
			}
		case <-ping:
			c.setWriteDeadline()
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.closeWith(0, "")
				return
			}
		}
	}
}

func (c *ClientConn) setWriteDeadline() {
	if c.writeWait > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
	}
}

func newUpgrader(opts config.TransportConfig) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  opts.ReadBufferSize,
		WriteBufferSize: opts.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			// 不做鉴权与来源限制
			return true
		},
	}
}

// ServeWS WebSocket 接入点（/ws）；非升级请求返回 400 且无响应体
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if !h.beginSession() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	defer h.sessions.Done()

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("upgrade error", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := NewClientConn(ws, h.transport)
	go conn.writePump()
	h.runSession(conn)
}
