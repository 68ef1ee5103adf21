package handler

import (
	"net/http"

	"github.com/blues/ivp/internal/logic"
	"github.com/gin-gonic/gin"
)

// Response 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
	})
}

// HandleError 将业务错误映射为HTTP状态码：
// 校验/重复冲突400、不存在404、存储不可用503（可重试）、其余500
func HandleError(c *gin.Context, err error) {
	switch {
	case logic.IsValidation(err):
		ve := err.(*logic.ValidationError)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: "校验失败",
			Errors:  ve.Errors,
		})
	case logic.IsDuplicate(err):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case logic.IsNotFound(err):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case logic.IsStoreUnavailable(err):
		ErrorResponse(c, http.StatusServiceUnavailable, err.Error())
	default:
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}
