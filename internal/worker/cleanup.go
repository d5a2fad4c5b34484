package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"jobtrack/internal/tasks"
)

// ObjectDeleter 抽象对象存储的删除能力，便于测试替换。
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, objectKey string) error
}

// CleanupNotifyMessage 附件清理完成后经 Redis Pub/Sub 通知前端的消息格式。
type CleanupNotifyMessage struct {
	Type          string `json:"type"`
	JobID         uint   `json:"job_id"`
	RemovedCount  int    `json:"removed_count"`
	FailedCount   int    `json:"failed_count"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// CleanupHandler 消费附件清理任务，逐个删除对象存储中的附件。
type CleanupHandler struct {
	storage     ObjectDeleter
	redisClient redis.UniversalClient
	logger      *slog.Logger
}

// NewCleanupHandler 构造 CleanupHandler。
func NewCleanupHandler(storage ObjectDeleter, redisClient redis.UniversalClient, logger *slog.Logger) *CleanupHandler {
	return &CleanupHandler{
		storage:     storage,
		redisClient: redisClient,
		logger:      logger,
	}
}

// HandleAttachmentCleanup 处理一条清理任务。
// 单个对象删除失败不中断其余删除；有失败则整体返回错误交给 Asynq 重试。
func (h *CleanupHandler) HandleAttachmentCleanup(ctx context.Context, task *asynq.Task) error {
	var payload tasks.AttachmentCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal cleanup payload: %w", err)
	}

	logger := h.logger.With(
		slog.Uint64("job_id", uint64(payload.JobID)),
		slog.String("correlation_id", payload.CorrelationID),
	)

	removed := 0
	failed := 0
	for _, key := range payload.ObjectKeys {
		if err := h.storage.DeleteObject(ctx, key); err != nil {
			logger.Error("delete attachment failed",
				slog.String("object_key", key),
				slog.Any("error", err),
			)
			failed++
			continue
		}
		removed++
	}

	h.notify(ctx, payload, removed, failed)

	if failed > 0 {
		return fmt.Errorf("cleanup job %d attachments: %d of %d deletes failed", payload.JobID, failed, len(payload.ObjectKeys))
	}

	logger.Info("attachments cleaned", slog.Int("removed", removed))
	return nil
}

func (h *CleanupHandler) notify(ctx context.Context, payload tasks.AttachmentCleanupPayload, removed, failed int) {
	if h.redisClient == nil {
		return
	}

	msg := CleanupNotifyMessage{
		Type:          "attachments_cleaned",
		JobID:         payload.JobID,
		RemovedCount:  removed,
		FailedCount:   failed,
		CorrelationID: payload.CorrelationID,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	channel := fmt.Sprintf("user_notify:%d", payload.UserID)
	if err := h.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		h.logger.Error("publish cleanup notify failed",
			slog.String("channel", channel),
			slog.Any("error", err),
		)
	}
}
