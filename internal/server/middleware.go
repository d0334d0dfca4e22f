package server

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// AdminRequired gates the back-office routes behind the shared admin token.
// An empty configured token locks the admin surface entirely.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		configured := s.cfg.AdminAPIToken
		if configured == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if subtle.ConstantTimeCompare([]byte(token), []byte(configured)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Next()
	}
}

// RequestLogger emits one structured line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, zap.Error(last.Err))
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("http request", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}
