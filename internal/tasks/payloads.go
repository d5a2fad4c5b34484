package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeAttachmentCleanup = "attachment:cleanup"
)

// AttachmentCleanupPayload 描述删除 Job 后需要清理的对象 key。
type AttachmentCleanupPayload struct {
	JobID         uint     `json:"job_id"`
	UserID        uint     `json:"user_id"`
	ObjectKeys    []string `json:"object_keys"`
	CorrelationID string   `json:"correlation_id"`
}

// NewAttachmentCleanupTask 构造一个附件清理任务。
func NewAttachmentCleanupTask(jobID, userID uint, objectKeys []string, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(AttachmentCleanupPayload{
		JobID:         jobID,
		UserID:        userID,
		ObjectKeys:    objectKeys,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAttachmentCleanup, payload), nil
}
