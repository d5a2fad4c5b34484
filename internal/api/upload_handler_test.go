package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newMultipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadFile_StoresUnderUserPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	storage := newFakeStorage()
	h := NewUploadHandler(storage, "")

	body, contentType := newMultipartUpload(t, "resume.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("userID", uint(1))

	h.UploadFile(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	filePath, _ := decodeBody(t, w)["filePath"].(string)
	if !strings.HasPrefix(filePath, "attachments/1/") || !strings.HasSuffix(filePath, ".pdf") {
		t.Fatalf("unexpected object key %q", filePath)
	}
	if _, ok := storage.uploaded[filePath]; !ok {
		t.Fatalf("expected object %q to be uploaded", filePath)
	}
}

func TestUploadFile_MissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewUploadHandler(newFakeStorage(), "")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("userID", uint(1))

	h.UploadFile(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
	if msg := decodeBody(t, w)["msg"]; msg != "File upload failed" {
		t.Fatalf("unexpected message %v", msg)
	}
}

func TestGetFileURL_RejectsForeignPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewUploadHandler(newFakeStorage(), "")

	req := httptest.NewRequest(http.MethodGet, "/api/files/view?key=attachments/2/other.pdf", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("userID", uint(1))

	h.GetFileURL(c)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestGetFileURL_SignsOwnKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	storage := newFakeStorage()
	storage.presign["attachments/1/prep.pdf"] = "https://signed.example/prep.pdf"
	h := NewUploadHandler(storage, "")

	req := httptest.NewRequest(http.MethodGet, "/api/files/view?key=attachments/1/prep.pdf", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("userID", uint(1))

	h.GetFileURL(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if url := decodeBody(t, w)["url"]; url != "https://signed.example/prep.pdf" {
		t.Fatalf("unexpected url %v", url)
	}
}
