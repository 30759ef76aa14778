package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MessageType 消息类型标签（JSON "type" 字段）
type MessageType string

const (
	TypeMove       MessageType = "Move"
	TypeConnect    MessageType = "Connect"
	TypeDisconnect MessageType = "Disconnect"
	TypeUpdate     MessageType = "Update"
)

var (
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrInvalidAction      = errors.New("invalid action")
	ErrFieldCase          = errors.New("field name case mismatch")
)

// ClientMessage 客户端 → 服务端的意图消息
// 示例：{"type":"Move","action":0,"playerId":"..."}
type ClientMessage struct {
	Type     MessageType `json:"type"`
	Action   Direction   `json:"action"`
	PlayerID string      `json:"playerId"`
}

// ServerMessage 服务端 → 客户端消息，只有本包内的三种变体实现它
type ServerMessage interface {
	messageType() MessageType
}

// ConnectMessage 连接确认，只发给新连接本身
type ConnectMessage struct {
	Player Ship
}

// DisconnectMessage 玩家离开通知
type DisconnectMessage struct {
	PlayerID string
}

// UpdateMessage 完整的世界快照
type UpdateMessage struct {
	Players []Ship
}

func (ConnectMessage) messageType() MessageType    { return TypeConnect }
func (DisconnectMessage) messageType() MessageType { return TypeDisconnect }
func (UpdateMessage) messageType() MessageType     { return TypeUpdate }

type connectWire struct {
	Type   MessageType `json:"type"`
	Player Ship        `json:"player"`
}

type disconnectWire struct {
	Type     MessageType `json:"type"`
	PlayerID string      `json:"playerId"`
}

type updateWire struct {
	Type    MessageType `json:"type"`
	Players []Ship      `json:"players"`
}

// Encode 将服务端消息编码为 JSON 文本（lowerCamelCase 字段）
func Encode(m ServerMessage) ([]byte, error) {
	switch m := m.(type) {
	case ConnectMessage:
		return json.Marshal(connectWire{Type: TypeConnect, Player: m.Player})
	case DisconnectMessage:
		return json.Marshal(disconnectWire{Type: TypeDisconnect, PlayerID: m.PlayerID})
	case UpdateMessage:
		players := m.Players
		if players == nil {
			// 空房间编码为 []，不是 null
			players = []Ship{}
		}
		return json.Marshal(updateWire{Type: TypeUpdate, Players: players})
	default:
		return nil, fmt.Errorf("encoding %T: %w", m, ErrUnknownMessageType)
	}
}

// DecodeServerMessage 解析服务端消息（客户端与测试使用）
func DecodeServerMessage(data []byte) (ServerMessage, error) {
	var head struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decoding server message: %w", err)
	}
	switch head.Type {
	case TypeConnect:
		var w connectWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decoding %s message: %w", head.Type, err)
		}
		return ConnectMessage{Player: w.Player}, nil
	case TypeDisconnect:
		var w disconnectWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decoding %s message: %w", head.Type, err)
		}
		return DisconnectMessage{PlayerID: w.PlayerID}, nil
	case TypeUpdate:
		var w updateWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decoding %s message: %w", head.Type, err)
		}
		return UpdateMessage{Players: w.Players}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, head.Type)
	}
}

// clientFields 客户端消息的字段名，必须大小写完全一致
var clientFields = []string{"type", "action", "playerId"}

// DecodeClientMessage 解析客户端消息；格式错误只返回 error，由调用方忽略后继续
// encoding/json 默认大小写不敏感，这里要求字段名精确匹配，"TYPE" 之类的键视为格式错误；未知字段忽略
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return ClientMessage{}, fmt.Errorf("decoding client message: %w", err)
	}
	for key := range raw {
		for _, f := range clientFields {
			if key != f && strings.EqualFold(key, f) {
				return ClientMessage{}, fmt.Errorf("%w: %q (want %q)", ErrFieldCase, key, f)
			}
		}
	}
	var m ClientMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return ClientMessage{}, fmt.Errorf("decoding client message: %w", err)
	}
	if m.Type != TypeMove {
		return ClientMessage{}, fmt.Errorf("%w: %q", ErrUnknownMessageType, m.Type)
	}
	if !m.Action.Valid() {
		return ClientMessage{}, fmt.Errorf("%w: %d", ErrInvalidAction, int(m.Action))
	}
	return m, nil
}

// EncodeClientMessage 编码客户端消息（机器人与测试客户端使用）
func EncodeClientMessage(m ClientMessage) ([]byte, error) {
	return json.Marshal(m)
}
