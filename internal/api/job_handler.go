package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jobtrack/internal/api/middleware"
	"jobtrack/internal/database"
	"jobtrack/internal/tasks"
)

// JobHandler 负责处理与求职申请相关的 API 请求。
type JobHandler struct {
	db          *gorm.DB
	asynqClient *asynq.Client
	redis       redis.UniversalClient
}

// NewJobHandler 构造 JobHandler。
func NewJobHandler(db *gorm.DB, asynqClient *asynq.Client, redisClient redis.UniversalClient) *JobHandler {
	return &JobHandler{
		db:          db,
		asynqClient: asynqClient,
		redis:       redisClient,
	}
}

var errInvalidJobID = errors.New("invalid job id")

type createJobRequest struct {
	Company            string                `json:"company" binding:"required"`
	Title              string                `json:"title" binding:"required"`
	Status             string                `json:"status" binding:"required"`
	Date               *time.Time            `json:"date"`
	Notes              string                `json:"notes"`
	Source             string                `json:"source"`
	Resume             string                `json:"resume"`
	CoverLetter        string                `json:"coverLetter"`
	InterviewProcess   string                `json:"interviewProcess"`
	InterviewQuestions string                `json:"interviewQuestions"`
	URL                string                `json:"url"`
	Attachments        []database.Attachment `json:"interviewHelperFiles"`
	BoardID            uint                  `json:"boardId" binding:"required"`
}

// updateJobRequest 的字段全部为指针，未出现在请求体中的字段不参与更新。
type updateJobRequest struct {
	Company            *string                `json:"company"`
	Title              *string                `json:"title"`
	Status             *string                `json:"status"`
	Date               *time.Time             `json:"date"`
	Notes              *string                `json:"notes"`
	Source             *string                `json:"source"`
	Resume             *string                `json:"resume"`
	CoverLetter        *string                `json:"coverLetter"`
	InterviewProcess   *string                `json:"interviewProcess"`
	InterviewQuestions *string                `json:"interviewQuestions"`
	URL                *string                `json:"url"`
	Attachments        *[]database.Attachment `json:"interviewHelperFiles"`
	BoardID            *uint                  `json:"boardId"`
}

type jobResponse struct {
	ID                 uint                  `json:"id"`
	Company            string                `json:"company"`
	Title              string                `json:"title"`
	Status             string                `json:"status"`
	Date               time.Time             `json:"date"`
	Notes              string                `json:"notes,omitempty"`
	Source             string                `json:"source,omitempty"`
	Resume             string                `json:"resume,omitempty"`
	CoverLetter        string                `json:"coverLetter,omitempty"`
	InterviewProcess   string                `json:"interviewProcess,omitempty"`
	InterviewQuestions string                `json:"interviewQuestions,omitempty"`
	URL                string                `json:"url,omitempty"`
	Attachments        []database.Attachment `json:"interviewHelperFiles"`
	BoardID            uint                  `json:"boardId"`
	UserID             uint                  `json:"userId"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}

// ListJobsByBoard 列出指定看板下、归属当前用户的全部申请。
// 过滤条件只看 Job 自身的 user_id，不回查 Board 的拥有者：
// 传入他人的 boardId 会得到空列表，而不是 401/403。
func (h *JobHandler) ListJobsByBoard(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	boardID, err := strconv.ParseUint(c.Param("boardId"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid board id")
		return
	}

	ctx := c.Request.Context()
	var jobs []database.Job
	if err := h.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", uint(boardID), userID).
		Order("date DESC").
		Find(&jobs).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list jobs failed", slog.Any("error", err))
		Internal(c, "Server Error")
		return
	}

	items := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		items = append(items, newJobResponse(j))
	}

	c.JSON(http.StatusOK, items)
}

// CreateJob 创建一条归属当前用户的申请记录。
// UserID 一律取自上下文；boardId 按调用方给定写入，不做归属核对。
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	attachments, err := marshalAttachments(req.Attachments)
	if err != nil {
		BadRequest(c, "invalid attachments")
		return
	}

	job := database.Job{
		Company:            req.Company,
		Title:              req.Title,
		Status:             req.Status,
		Date:               date,
		Notes:              req.Notes,
		Source:             req.Source,
		Resume:             req.Resume,
		CoverLetter:        req.CoverLetter,
		InterviewProcess:   req.InterviewProcess,
		InterviewQuestions: req.InterviewQuestions,
		URL:                req.URL,
		Attachments:        attachments,
		BoardID:            req.BoardID,
		UserID:             userID,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&job).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create job failed", slog.Any("error", err))
		Internal(c, "Server Error")
		return
	}

	h.publishJobEvent(c, userID, JobEventMessage{
		Type:    "job_created",
		JobID:   job.ID,
		BoardID: job.BoardID,
	})

	c.JSON(http.StatusCreated, newJobResponse(job))
}

// UpdateJob 合并调用方提交的字段并返回更新后的记录。
// 先查存在（404），再查归属（401），两步之间不加锁；
// 并发删除落在中间时，第二次访问以 NotFound 收场。
func (h *JobHandler) UpdateJob(c *gin.Context) {
	var req updateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	job, err := h.getJob(ctx, c.Param("id"))
	if err != nil {
		h.replyJobLookupError(c, err)
		return
	}
	if job.UserID != userID {
		NotAuthorized(c)
		return
	}

	updates, err := buildJobUpdates(req)
	if err != nil {
		BadRequest(c, "invalid attachments")
		return
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(job).Updates(updates).Error; err != nil {
			middleware.LoggerFromContext(c).Error("update job failed", slog.Any("error", err))
			Internal(c, "Server Error")
			return
		}
	}

	if err := h.db.WithContext(ctx).First(job, job.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Job not found")
			return
		}
		middleware.LoggerFromContext(c).Error("reload job failed", slog.Any("error", err))
		Internal(c, "Server Error")
		return
	}

	h.publishJobEvent(c, userID, JobEventMessage{
		Type:    "job_updated",
		JobID:   job.ID,
		BoardID: job.BoardID,
	})

	c.JSON(http.StatusOK, newJobResponse(*job))
}

// DeleteJob 永久删除一条申请记录，并异步清理其挂载的附件对象。
func (h *JobHandler) DeleteJob(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	job, err := h.getJob(ctx, c.Param("id"))
	if err != nil {
		h.replyJobLookupError(c, err)
		return
	}
	if job.UserID != userID {
		NotAuthorized(c)
		return
	}

	if err := h.db.WithContext(ctx).Unscoped().Delete(&database.Job{}, job.ID).Error; err != nil {
		middleware.LoggerFromContext(c).Error("delete job failed", slog.Any("error", err))
		Internal(c, "Server Error")
		return
	}

	h.enqueueAttachmentCleanup(c, job)

	h.publishJobEvent(c, userID, JobEventMessage{
		Type:    "job_deleted",
		JobID:   job.ID,
		BoardID: job.BoardID,
	})

	c.JSON(http.StatusOK, gin.H{"msg": "Job removed"})
}

func (h *JobHandler) getJob(ctx context.Context, idParam string) (*database.Job, error) {
	jobID, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return nil, errInvalidJobID
	}

	var job database.Job
	if err := h.db.WithContext(ctx).First(&job, uint(jobID)).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (h *JobHandler) replyJobLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidJobID):
		BadRequest(c, "invalid job id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "Job not found")
	default:
		middleware.LoggerFromContext(c).Error("query job failed", slog.Any("error", err))
		Internal(c, "Server Error")
	}
}

func (h *JobHandler) enqueueAttachmentCleanup(c *gin.Context, job *database.Job) {
	if h.asynqClient == nil {
		return
	}

	keys := attachmentKeys(job.Attachments)
	if len(keys) == 0 {
		return
	}

	task, err := tasks.NewAttachmentCleanupTask(job.ID, job.UserID, keys, middleware.GetCorrelationID(c))
	if err != nil {
		middleware.LoggerFromContext(c).Error("create cleanup task failed", slog.Any("error", err))
		return
	}
	if _, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(5)); err != nil {
		middleware.LoggerFromContext(c).Error("enqueue cleanup task failed", slog.Any("error", err))
	}
}

func attachmentKeys(raw datatypes.JSON) []string {
	attachments := unmarshalAttachments(raw)
	keys := make([]string, 0, len(attachments))
	for _, a := range attachments {
		if a.Path != "" {
			keys = append(keys, a.Path)
		}
	}
	return keys
}

func buildJobUpdates(req updateJobRequest) (map[string]any, error) {
	updates := map[string]any{}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Date != nil {
		updates["date"] = *req.Date
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Source != nil {
		updates["source"] = *req.Source
	}
	if req.Resume != nil {
		updates["resume"] = *req.Resume
	}
	if req.CoverLetter != nil {
		updates["cover_letter"] = *req.CoverLetter
	}
	if req.InterviewProcess != nil {
		updates["interview_process"] = *req.InterviewProcess
	}
	if req.InterviewQuestions != nil {
		updates["interview_questions"] = *req.InterviewQuestions
	}
	if req.URL != nil {
		updates["url"] = *req.URL
	}
	if req.Attachments != nil {
		attachments, err := marshalAttachments(*req.Attachments)
		if err != nil {
			return nil, err
		}
		updates["attachments"] = attachments
	}
	if req.BoardID != nil {
		updates["board_id"] = *req.BoardID
	}
	return updates, nil
}

func marshalAttachments(attachments []database.Attachment) (datatypes.JSON, error) {
	if attachments == nil {
		attachments = []database.Attachment{}
	}
	data, err := json.Marshal(attachments)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func unmarshalAttachments(raw datatypes.JSON) []database.Attachment {
	if len(raw) == 0 {
		return []database.Attachment{}
	}
	var attachments []database.Attachment
	if err := json.Unmarshal(raw, &attachments); err != nil {
		return []database.Attachment{}
	}
	return attachments
}

func newJobResponse(job database.Job) jobResponse {
	return jobResponse{
		ID:                 job.ID,
		Company:            job.Company,
		Title:              job.Title,
		Status:             job.Status,
		Date:               job.Date,
		Notes:              job.Notes,
		Source:             job.Source,
		Resume:             job.Resume,
		CoverLetter:        job.CoverLetter,
		InterviewProcess:   job.InterviewProcess,
		InterviewQuestions: job.InterviewQuestions,
		URL:                job.URL,
		Attachments:        unmarshalAttachments(job.Attachments),
		BoardID:            job.BoardID,
		UserID:             job.UserID,
		CreatedAt:          job.CreatedAt,
		UpdatedAt:          job.UpdatedAt,
	}
}

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}
