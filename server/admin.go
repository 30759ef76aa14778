package server

import (
	"encoding/json"
	"net/http"
)

type adminConfig struct {
	Step           *float64 `json:"step,omitempty"`
	MaxMessageSize int64    `json:"maxMessageSize,omitempty"`
	SendQueueSize  int      `json:"sendQueueSize,omitempty"`
}

// adminUpdate 可热更新的字段；传输参数只在启动时生效，POST 中出现即拒绝
type adminUpdate struct {
	Step *float64 `json:"step"`
}

// HandleAdminConfig 读取与热更新房间规则
// GET  /admin/config  返回当前配置
// POST /admin/config  以 JSON 载荷更新 step，其他字段返回 400
func (h *Hub) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		step := h.room.Step()
		writeJSON(w, http.StatusOK, adminConfig{
			Step:           &step,
			MaxMessageSize: h.transport.MaxMessageSize,
			SendQueueSize:  h.transport.SendQueueSize,
		})
	case http.MethodPost:
		var body adminUpdate
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&body); err != nil {
			http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if body.Step != nil && !h.room.SetStep(*body.Step) {
			http.Error(w, "step must be > 0", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		h.log.Infow("config updated", "step", h.room.Step())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出房间人数、连接数与计数器
// GET /metrics
func (h *Hub) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"players":     h.room.PlayerCount(),
		"connections": h.conns.Len(),
		"counters":    h.metrics.Snapshot(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
