package rest

import (
	"time"

	"satch-client/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Middleware struct {
	Handler gin.HandlerFunc
	Group   string
}

func NewMiddleware(group string, handler gin.HandlerFunc) Middleware {
	return Middleware{
		Group:   group,
		Handler: handler,
	}
}

const RequestIdHeader = "X-Request-Id"

// RequestLogMiddleware tags every request with an id and logs method, path, status and latency.
func RequestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(RequestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}
		c.Set(RequestIdHeader, requestId)
		c.Header(RequestIdHeader, requestId)

		start := time.Now()
		c.Next()

		logger.Default().Infof(
			"[%s] %s %s -> %d (%s)",
			requestId,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+RequestIdHeader)
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
