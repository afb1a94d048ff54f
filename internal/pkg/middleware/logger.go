package middleware

import (
	"time"

	"github.com/Christentimmy/CasaRanche-Backend/pkg/logger"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextRequestID 请求ID在 gin 上下文中的键
const ContextRequestID = "RequestID"

// LoggerMiddleware 记录请求日志和 HTTP 指标
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		// 上游网关透传的追踪ID，没有则沿用请求ID
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = requestID
		}
		c.Header("X-Trace-ID", traceID)

		c.Next()

		cost := time.Since(start)
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.GetGlobalCollector().RecordHTTPRequest(c.Request.Method, endpoint, status, cost)

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
			zap.String("request_id", requestID),
			zap.String("trace_id", traceID),
			zap.Duration("cost", cost),
		}
		if userID := UserID(c); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if status >= 500 {
			logger.L().Error(path, fields...)
			return
		}
		logger.L().Info(path, fields...)
	}
}
