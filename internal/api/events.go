package api

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"jobtrack/internal/api/middleware"
)

// JobEventMessage 统一的申请变更事件格式（经 Redis Pub/Sub 转发给 WebSocket 客户端）。
type JobEventMessage struct {
	Type          string `json:"type"`
	JobID         uint   `json:"job_id"`
	BoardID       uint   `json:"board_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

func userNotifyChannel(userID uint) string {
	return fmt.Sprintf("user_notify:%d", userID)
}

// publishJobEvent 将事件发到用户专属频道。投递失败只记日志，不影响请求结果。
func (h *JobHandler) publishJobEvent(c *gin.Context, userID uint, msg JobEventMessage) {
	if h.redis == nil {
		return
	}

	msg.CorrelationID = middleware.GetCorrelationID(c)
	payload, err := json.Marshal(msg)
	if err != nil {
		middleware.LoggerFromContext(c).Error("marshal job event failed", slog.Any("error", err))
		return
	}

	if err := h.redis.Publish(c.Request.Context(), userNotifyChannel(userID), payload).Err(); err != nil {
		middleware.LoggerFromContext(c).Error("publish job event failed",
			slog.String("type", msg.Type),
			slog.Any("error", err),
		)
	}
}
