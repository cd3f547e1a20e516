package middleware

import (
	"log/slog"
	"time"

	ports "feedstack-post-service/internal/domain/ports/output"

	"github.com/gin-gonic/gin"
)

func RequestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= 500 {
			log.Error("Request failed", attrs...)
			return
		}
		log.Info("Request handled", attrs...)
	}
}
