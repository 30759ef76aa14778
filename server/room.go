package server

// Room 房间：连接处理代码只通过这里访问实体存储，后续的房间级策略（如人数上限）也加在这一层
type Room struct {
	ships *ShipStore
}

// NewRoom 创建房间，step 为每次移动的步长
func NewRoom(step float64) *Room {
	return &Room{ships: NewShipStore(step)}
}

// Join 新玩家加入，返回在原点创建的飞船
func (r *Room) Join() Ship {
	return r.ships.Create()
}

// Leave 玩家离开；重复调用无副作用
func (r *Room) Leave(id string) {
	r.ships.Remove(id)
}

// Move 执行一次移动意图，返回状态是否改变
func (r *Room) Move(id string, dir Direction) bool {
	return r.ships.ApplyMove(id, dir)
}

// ListPlayers 当前全部飞船的快照（加入顺序）
func (r *Room) ListPlayers() []Ship {
	return r.ships.Snapshot()
}

// PlayerCount 当前玩家数
func (r *Room) PlayerCount() int {
	return r.ships.Len()
}

// Step 当前移动步长
func (r *Room) Step() float64 {
	return r.ships.Step()
}

// SetStep 热更新移动步长
func (r *Room) SetStep(step float64) bool {
	return r.ships.SetStep(step)
}
