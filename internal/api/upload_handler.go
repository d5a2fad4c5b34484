package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"jobtrack/internal/api/middleware"
)

// ObjectStorage 抽象对象存储，便于测试替换。
type ObjectStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
}

// UploadHandler 负责处理附件上传与访问。
// 上传需要登录，对象 key 按用户前缀隔离。
type UploadHandler struct {
	Storage   ObjectStorage
	ClamdAddr string
}

// NewUploadHandler 返回 UploadHandler 实例。
func NewUploadHandler(storageClient ObjectStorage, clamdAddr string) *UploadHandler {
	return &UploadHandler{
		Storage:   storageClient,
		ClamdAddr: clamdAddr,
	}
}

// UploadFile 接收 multipart 文件，可选地先经 clamd 扫描，再写入对象存储。
// 返回的 filePath 即对象 key，由调用方挂到 Job 的附件列表上。
func (h *UploadHandler) UploadFile(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "File upload failed")
		return
	}

	logger := middleware.LoggerFromContext(c)

	if h.ClamdAddr != "" {
		clean, err := h.scanFile(file)
		if err != nil {
			logger.Error("scan file failed", slog.Any("error", err))
			Internal(c, "failed to scan file")
			return
		}
		if !clean {
			BadRequest(c, "malicious file detected")
			return
		}
	}

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer fileReader.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	objectKey := fmt.Sprintf("attachments/%d/%s%s", userID, uuid.NewString(), ext)
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := h.Storage.UploadFile(c.Request.Context(), objectKey, fileReader, file.Size, contentType); err != nil {
		logger.Error("upload file failed", slog.Any("error", err))
		Internal(c, "failed to upload file")
		return
	}

	c.JSON(http.StatusOK, gin.H{"filePath": objectKey})
}

// GetFileURL 返回附件的限时预签名下载链接。
// key 必须位于调用方自己的前缀之下。
func (h *UploadHandler) GetFileURL(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	objectKey := c.Query("key")
	if objectKey == "" {
		BadRequest(c, "missing key")
		return
	}

	expectedPrefix := fmt.Sprintf("attachments/%d/", userID)
	if !strings.HasPrefix(objectKey, expectedPrefix) {
		NotAuthorized(c)
		return
	}

	signedURL, err := h.Storage.GeneratePresignedURL(c.Request.Context(), objectKey, 15*time.Minute)
	if err != nil {
		middleware.LoggerFromContext(c).Error("generate presigned url failed", slog.Any("error", err))
		Internal(c, "failed to generate url")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

func (h *UploadHandler) scanFile(file *multipart.FileHeader) (bool, error) {
	fileReader, err := file.Open()
	if err != nil {
		return false, fmt.Errorf("open file: %w", err)
	}
	defer fileReader.Close()

	clamdClient := clamd.NewClamd(h.ClamdAddr)

	abortChan := make(chan bool)
	defer close(abortChan)

	scanChan, err := clamdClient.ScanStream(fileReader, abortChan)
	if err != nil {
		return false, fmt.Errorf("scan stream: %w", err)
	}

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return false, nil
		}
	}
	return true, nil
}
