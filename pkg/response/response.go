package response

import (
	"net/http"

	"github.com/Christentimmy/CasaRanche-Backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Created 资源创建成功 (HTTP 201)
func Created(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: msg,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// FromError 按错误分类映射 HTTP 状态码和业务码
func FromError(c *gin.Context, err error) {
	httpCode, errCode := Classify(err)
	Error(c, httpCode, errCode, apperror.PublicMessage(err))
}

// Classify 返回错误对应的 HTTP 状态码和业务码
func Classify(err error) (int, int) {
	switch {
	case apperror.IsValidation(err):
		return http.StatusBadRequest, ErrValidation
	case apperror.IsNotFound(err):
		return http.StatusNotFound, ErrNotFound
	case apperror.IsAuth(err):
		return http.StatusUnauthorized, ErrTokenInvalid
	default:
		return http.StatusInternalServerError, ErrServerInternal
	}
}
