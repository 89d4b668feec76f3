package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope shared by every endpoint.
// Code is 0 on success; on failure it carries a numeric business code
// and Error a stable machine-readable string.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Pagination describes one page of a list.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData wraps a paginated list.
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

// ── Success ──

// OK 200
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// NoContent 204
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// OKPage 200 with pagination metadata.
func OKPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data: PageData{
			List: list,
			Pagination: Pagination{
				Page:       page,
				PageSize:   pageSize,
				Total:      total,
				TotalPages: totalPages,
			},
		},
	})
}

// ── Errors ──

// Error writes a failure envelope.
func Error(c *gin.Context, httpStatus int, code int, errKey, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Error:   errKey,
	})
}

// ErrorWithDetails writes a failure envelope with extra detail, e.g. per-field validation errors.
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, errKey, message string, details interface{}) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Error:   errKey,
		Details: details,
	})
}

// ── Shortcuts ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, errKey, message string) {
	Error(c, http.StatusBadRequest, code, errKey, message)
}

// ValidationError 400 with field details.
func ValidationError(c *gin.Context, details interface{}) {
	ErrorWithDetails(c, http.StatusBadRequest, 10001, "validation_error", "invalid request", details)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, errKey, message string) {
	Error(c, http.StatusUnauthorized, code, errKey, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, errKey, message string) {
	Error(c, http.StatusForbidden, code, errKey, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, errKey, message string) {
	Error(c, http.StatusNotFound, code, errKey, message)
}

// Conflict 409
func Conflict(c *gin.Context, code int, errKey, message string) {
	Error(c, http.StatusConflict, code, errKey, message)
}

// Gone 410
func Gone(c *gin.Context, code int, errKey, message string) {
	Error(c, http.StatusGone, code, errKey, message)
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, 10004, "rate_limited", "too many requests, try again later")
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "internal_error", "internal server error")
}
