package server

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultStep 每条 Move 指令的默认位移
const DefaultStep = 0.01

// ShipStore 权威的飞船列表，按加入顺序保存；所有读写都在 mu 下完成，不做任何 I/O
type ShipStore struct {
	mu    sync.Mutex
	ships []Ship
	step  float64
	newID func() string
}

// NewShipStore 创建空的实体存储；step <= 0 时使用 DefaultStep
func NewShipStore(step float64) *ShipStore {
	if step <= 0 {
		step = DefaultStep
	}
	return &ShipStore{
		ships: make([]Ship, 0, 16),
		step:  step,
		newID: uuid.NewString,
	}
}

// Create 在原点创建一艘新飞船并追加到列表末尾
func (s *ShipStore) Create() Ship {
	ship := Ship{ID: s.newID()}
	s.mu.Lock()
	s.ships = append(s.ships, ship)
	s.mu.Unlock()
	return ship
}

// Remove 删除所有匹配 id 的飞船；不存在时什么也不做
func (s *ShipStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.ships[:0]
	for _, ship := range s.ships {
		if ship.ID != id {
			kept = append(kept, ship)
		}
	}
	// 清掉尾部残留，避免旧值被底层数组继续引用
	for i := len(kept); i < len(s.ships); i++ {
		s.ships[i] = Ship{}
	}
	s.ships = kept
}

// ApplyMove 按方向移动一步；id 不存在（例如已断开）或方向非法时忽略，返回是否发生了移动
func (s *ShipStore) ApplyMove(id string, dir Direction) bool {
	if !dir.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ships {
		if s.ships[i].ID == id {
			s.ships[i] = s.ships[i].moved(dir, s.step)
			return true
		}
	}
	return false
}

// Snapshot 返回当前所有飞船的值拷贝，调用方可在锁外自由序列化
func (s *ShipStore) Snapshot() []Ship {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Ship, len(s.ships))
	copy(out, s.ships)
	return out
}

// Len 当前飞船数量
func (s *ShipStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ships)
}

// Step 当前移动步长
func (s *ShipStore) Step() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// SetStep 热更新移动步长（管理接口使用），非正数被拒绝
func (s *ShipStore) SetStep(step float64) bool {
	if step <= 0 {
		return false
	}
	s.mu.Lock()
	s.step = step
	s.mu.Unlock()
	return true
}
