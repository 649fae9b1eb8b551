package handler

import (
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/axelgear/design-integration/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// maxUploadSize caps version attachments at 50 MB.
const maxUploadSize = 50 << 20

// UploadHandler stores version attachments in object storage and returns
// the URL referenced by the version record.
type UploadHandler struct {
	client *minio.Client
	cfg    config.MinIOConfig
}

func NewUploadHandler(client *minio.Client, cfg config.MinIOConfig) *UploadHandler {
	return &UploadHandler{client: client, cfg: cfg}
}

// Upload POST /api/v1/uploads
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.client == nil {
		Error(c, 50300, "file storage is not configured")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}
	if file.Size > maxUploadSize {
		BadRequest(c, "file exceeds the 50MB limit")
		return
	}

	src, err := file.Open()
	if err != nil {
		InternalError(c, "open upload: "+err.Error())
		return
	}
	defer src.Close()

	objectName := fmt.Sprintf("versions/%s/%s%s",
		time.Now().Format("2006/01"),
		uuid.New().String()[:32],
		path.Ext(file.Filename))

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = h.client.PutObject(c.Request.Context(), h.cfg.Bucket, objectName, src, file.Size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		InternalError(c, "store upload: "+err.Error())
		return
	}

	Created(c, gin.H{
		"file_url":  "/files/" + objectName,
		"file_name": file.Filename,
	})
}

// Download GET /api/v1/files/*object
func (h *UploadHandler) Download(c *gin.Context) {
	if h.client == nil {
		Error(c, 50300, "file storage is not configured")
		return
	}

	objectName := c.Param("object")
	if len(objectName) > 0 && objectName[0] == '/' {
		objectName = objectName[1:]
	}

	url, err := h.client.PresignedGetObject(c.Request.Context(), h.cfg.Bucket, objectName,
		15*time.Minute, nil)
	if err != nil {
		NotFound(c, "file not found")
		return
	}

	c.Redirect(http.StatusFound, url.String())
}
