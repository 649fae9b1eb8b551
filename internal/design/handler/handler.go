package handler

import (
	"errors"
	"strconv"

	"github.com/axelgear/design-integration/internal/config"
	"github.com/axelgear/design-integration/internal/design/repository"
	"github.com/axelgear/design-integration/internal/design/service"
	"github.com/axelgear/design-integration/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
)

// Handlers bundles the HTTP handlers behind one constructor.
type Handlers struct {
	Auth      *AuthHandler
	Request   *RequestHandler
	Item      *ItemHandler
	Version   *VersionHandler
	Dashboard *DashboardHandler
	Upload    *UploadHandler
}

func NewHandlers(svc *service.Services, cfg *config.Config, uploader *minio.Client) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(svc.Auth),
		Request:   NewRequestHandler(svc.Request),
		Item:      NewItemHandler(svc.Item),
		Version:   NewVersionHandler(svc.Version),
		Dashboard: NewDashboardHandler(svc.Dashboard),
		Upload:    NewUploadHandler(uploader, cfg.MinIO),
	}
}

// Response is the envelope every endpoint returns.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps paginated lists.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// RespondError maps domain errors onto the envelope.
func RespondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, action+": not found")
	case errors.Is(err, service.ErrRoleNotAllowed):
		Forbidden(c, err.Error())
	case errors.Is(err, service.ErrActionInProgress),
		errors.Is(err, service.ErrDuplicateTag):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrLocked),
		errors.Is(err, service.ErrStatusNotAllowed),
		errors.Is(err, service.ErrRevisionNotAllowed),
		errors.Is(err, service.ErrReasonRequired),
		errors.Is(err, service.ErrNotDraft),
		errors.Is(err, service.ErrOrderNotSubmitted),
		errors.Is(err, service.ErrNoItemsSelected),
		errors.Is(err, service.ErrQtyExceeds),
		errors.Is(err, service.ErrBOMItemMismatch),
		errors.Is(err, service.ErrSKURequired):
		BadRequest(c, err.Error())
	default:
		InternalError(c, action+": "+err.Error())
	}
}

// GetUserID returns the authenticated user id.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetActor builds the service actor from the JWT claims.
func GetActor(c *gin.Context) service.Actor {
	return service.Actor{
		UserID: GetUserID(c),
		Name:   c.GetString("user_name"),
		Roles:  middleware.GetRoles(c),
	}
}

// GetPagination reads page/page_size query params with sane bounds.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
