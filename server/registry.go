package server

import "sync"

// Handle 可发送消息的传输句柄，由 Registry 持有
type Handle interface {
	Send(b []byte) error
	IsOpen() bool
	Close() error
}

// Registry 连接 id → 传输句柄；所有增删与快照互斥
type Registry struct {
	mu    sync.Mutex
	conns map[string]Handle
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Handle)}
}

// Add 注册连接，同 id 的旧句柄被覆盖
func (g *Registry) Add(id string, h Handle) {
	g.mu.Lock()
	g.conns[id] = h
	g.mu.Unlock()
}

// Remove 注销连接；不存在时忽略
func (g *Registry) Remove(id string) {
	g.mu.Lock()
	delete(g.conns, id)
	g.mu.Unlock()
}

// SnapshotOpen 在锁内复制仍处于打开状态的句柄；发送必须在锁外进行，慢连接不能阻塞注册/注销
func (g *Registry) SnapshotOpen() []Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Handle, 0, len(g.conns))
	for _, h := range g.conns {
		if h.IsOpen() {
			out = append(out, h)
		}
	}
	return out
}

// SnapshotAll 复制全部句柄（包括已关闭的），用于停机时统一关闭
func (g *Registry) SnapshotAll() []Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Handle, 0, len(g.conns))
	for _, h := range g.conns {
		out = append(out, h)
	}
	return out
}

// Len 当前注册的连接数
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.conns)
}
