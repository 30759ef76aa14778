package server

import (
	"github.com/gorilla/websocket"
)

// connState 连接会话的状态：Connecting → Joined → Receiving → Closing → Closed
type connState int

const (
	stateConnecting connState = iota
	stateJoined
	stateReceiving
	stateClosing
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateJoined:
		return "joined"
	case stateReceiving:
		return "receiving"
	case stateClosing:
		return "closing"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// session 单个连接的完整生命周期；同一连接的消息严格按顺序处理
type session struct {
	hub  *Hub
	conn *ClientConn
	ship Ship

	// 对端关闭帧携带的关闭码与原因，Closing 时原样回显
	closeCode int
	closeText string
}

// runSession 在当前协程中驱动状态机直到 Closed
func (h *Hub) runSession(conn *ClientConn) {
	s := &session{hub: h, conn: conn}
	state := stateConnecting
	for state != stateClosed {
		next := s.transition(state)
		if next != state {
			h.log.Debugw("connection state", "player", s.ship.ID, "from", state, "to", next)
		}
		state = next
	}
}

func (s *session) transition(state connState) connState {
	switch state {
	case stateConnecting:
		return s.accept()
	case stateJoined:
		// 新玩家加入也是一次状态变化，所有人都收到新快照
		s.hub.broadcastSnapshot()
		return stateReceiving
	case stateReceiving:
		return s.receive()
	case stateClosing:
		return s.release()
	default:
		return stateClosed
	}
}

// accept 创建飞船、发送连接确认、注册连接
func (s *session) accept() connState {
	h := s.hub
	s.ship = h.room.Join()
	h.metrics.IncAccepted()

	ack, err := Encode(ConnectMessage{Player: s.ship})
	if err != nil {
		h.log.Errorw("encode connect ack failed", "player", s.ship.ID, "error", err)
		return stateClosing
	}
	// 先入队确认消息再注册，保证客户端收到的第一帧一定是自己的 Connect
	if err := s.conn.Send(ack); err != nil {
		h.log.Warnw("send connect ack failed", "player", s.ship.ID, "error", err)
		return stateClosing
	}
	h.conns.Add(s.ship.ID, s.conn)

	if h.isClosing() {
		// Hub 正在关闭：与 Close 一致以 1001 结束
		s.closeCode = websocket.CloseGoingAway
		return stateClosing
	}
	h.log.Infow("player joined", "player", s.ship.ID, "players", h.room.PlayerCount())
	return stateJoined
}

// receive 读取并处理一条消息；关闭或传输错误时进入 Closing
func (s *session) receive() connState {
	h := s.hub
	res := s.conn.receive()
	switch res.kind {
	case readData:
		s.handle(res.data)
		return stateReceiving
	case readClosed:
		s.closeCode, s.closeText = res.code, res.text
		h.log.Debugw("close frame received", "player", s.ship.ID, "code", res.code, "reason", res.text)
		return stateClosing
	default:
		if websocket.IsUnexpectedCloseError(res.err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			h.log.Errorw("read error", "player", s.ship.ID, "error", res.err)
		} else {
			h.log.Debugw("connection dropped", "player", s.ship.ID, "error", res.err)
		}
		return stateClosing
	}
}

// handle 解码并执行一条客户端消息；无论解码结果如何都广播一次快照
func (s *session) handle(data []byte) {
	h := s.hub
	h.metrics.IncReceived()
	h.log.Debugw("received message", "player", s.ship.ID, "message", string(data))

	msg, err := DecodeClientMessage(data)
	if err != nil {
		h.metrics.IncDecodeFailures()
		h.log.Warnw("ignoring malformed message", "player", s.ship.ID, "error", err)
	} else {
		switch msg.Type {
		case TypeMove:
			if h.room.Move(msg.PlayerID, msg.Action) {
				h.metrics.IncMoves()
			}
		}
	}

	h.broadcastSnapshot()
}

// release 完成关闭握手，移出房间与注册表，并通知其余连接
func (s *session) release() connState {
	h := s.hub
	_ = s.conn.closeWith(s.closeCode, s.closeText)

	h.room.Leave(s.ship.ID)
	h.conns.Remove(s.ship.ID)
	h.metrics.IncClosed()
	h.log.Infow("player left", "player", s.ship.ID, "players", h.room.PlayerCount())

	h.broadcast(DisconnectMessage{PlayerID: s.ship.ID})
	return stateClosed
}
