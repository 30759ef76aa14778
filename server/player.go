package server

import "fmt"

// Direction 移动方向（线上编码为 0-3 的整数）
type Direction int

const (
	Forward Direction = iota
	Right
	Left
	Backward
)

// Valid 是否为已定义的方向
func (d Direction) Valid() bool {
	return d >= Forward && d <= Backward
}

func (d Direction) String() string {
	switch d {
	case Forward:
		return "Forward"
	case Right:
		return "Right"
	case Left:
		return "Left"
	case Backward:
		return "Backward"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Ship 房间内的飞船实体（服务端权威状态）；ID 创建后不可变
type Ship struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// moved 返回沿 dir 前进 step 之后的位置，只改变一个坐标轴
func (s Ship) moved(dir Direction, step float64) Ship {
	switch dir {
	case Forward:
		s.Y += step
	case Backward:
		s.Y -= step
	case Right:
		s.X += step
	case Left:
		s.X -= step
	}
	return s
}
