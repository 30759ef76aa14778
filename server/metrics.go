package server

import (
	"sync/atomic"
)

// HubMetrics 记录同步中枢运行期的关键指标（用于监控与调试）
type HubMetrics struct {
	ConnectionsAccepted int64 // 完成握手并加入房间的连接数
	ConnectionsClosed   int64 // 已完成清理的连接数
	MessagesReceived    int64 // 收到的客户端消息数
	DecodeFailures      int64 // 无法解析而被忽略的消息数
	MovesApplied        int64 // 实际生效的移动数
	Broadcasts          int64 // 广播次数
	SendFailures        int64 // 因队列满或连接关闭导致的发送失败数
}

func (m *HubMetrics) IncAccepted()       { atomic.AddInt64(&m.ConnectionsAccepted, 1) }
func (m *HubMetrics) IncClosed()         { atomic.AddInt64(&m.ConnectionsClosed, 1) }
func (m *HubMetrics) IncReceived()       { atomic.AddInt64(&m.MessagesReceived, 1) }
func (m *HubMetrics) IncDecodeFailures() { atomic.AddInt64(&m.DecodeFailures, 1) }
func (m *HubMetrics) IncMoves()          { atomic.AddInt64(&m.MovesApplied, 1) }
func (m *HubMetrics) IncBroadcasts()     { atomic.AddInt64(&m.Broadcasts, 1) }
func (m *HubMetrics) IncSendFailures()   { atomic.AddInt64(&m.SendFailures, 1) }

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *HubMetrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"connections_accepted": atomic.LoadInt64(&m.ConnectionsAccepted),
		"connections_closed":   atomic.LoadInt64(&m.ConnectionsClosed),
		"messages_received":    atomic.LoadInt64(&m.MessagesReceived),
		"decode_failures":      atomic.LoadInt64(&m.DecodeFailures),
		"moves_applied":        atomic.LoadInt64(&m.MovesApplied),
		"broadcasts":           atomic.LoadInt64(&m.Broadcasts),
		"send_failures":        atomic.LoadInt64(&m.SendFailures),
	}
}
