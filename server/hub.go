package server

import (
	"context"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"orbitarena/config"
)

// Hub 单个房间的同步中枢：持有房间状态与连接注册表，由组合根显式创建并交给每个连接会话
type Hub struct {
	room    *Room
	conns   *Registry
	metrics *HubMetrics
	log     *zap.SugaredLogger

	upgrader  websocket.Upgrader
	transport config.TransportConfig

	mu       sync.Mutex
	closing  bool
	sessions sync.WaitGroup
}

// NewHub 按配置创建 Hub
func NewHub(cfg config.Config, log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		room:      NewRoom(cfg.Room.Step),
		conns:     NewRegistry(),
		metrics:   &HubMetrics{},
		log:       log,
		upgrader:  newUpgrader(cfg.Transport),
		transport: cfg.Transport,
	}
}

// Room 房间状态
func (h *Hub) Room() *Room { return h.room }

// Metrics 运行指标
func (h *Hub) Metrics() *HubMetrics { return h.metrics }

// ConnectionCount 当前注册的连接数
func (h *Hub) ConnectionCount() int { return h.conns.Len() }

// broadcast 编码一次，发送给注册表中所有打开的连接；发送在注册表锁外进行
func (h *Hub) broadcast(m ServerMessage) {
	payload, err := Encode(m)
	if err != nil {
		h.log.Errorw("encode failed", "error", err)
		return
	}
	for _, c := range h.conns.SnapshotOpen() {
		if err := c.Send(payload); err != nil {
			// 发送失败只影响该连接：关闭它，由它自己的会话完成清理
			// 发送队列满也走这条路径，慢客户端会被断开而不是拖住广播
			h.metrics.IncSendFailures()
			h.log.Warnw("send failed, closing connection",
				"type", m.messageType(),
				"send_queue_full", errors.Is(err, ErrSendQueueFull),
				"error", err)
			_ = c.Close()
		}
	}
	h.metrics.IncBroadcasts()
}

// broadcastSnapshot 广播当前完整快照
func (h *Hub) broadcastSnapshot() {
	h.broadcast(UpdateMessage{Players: h.room.ListPlayers()})
}

func (h *Hub) beginSession() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.sessions.Add(1)
	return true
}

func (h *Hub) isClosing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closing
}

// Close 停止接入新连接，关闭所有已注册连接，并等待会话全部结束或 ctx 到期
func (h *Hub) Close(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	h.mu.Unlock()

	for _, c := range h.conns.SnapshotAll() {
		_ = c.Close()
	}

	done := make(chan struct{})
	go func() {
		h.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
