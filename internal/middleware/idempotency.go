package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotency-Replayed"
	idempotencyTTL    = 24 * time.Hour
)

// ResponseCache stores replayable responses.
type ResponseCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// cachedResponse stores the response for idempotent requests.
type cachedResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
	Headers    http.Header     `json:"headers"`
}

// responseWriter wraps gin.ResponseWriter to capture the response.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyKey returns the client-supplied idempotency key of the request.
func IdempotencyKey(c *gin.Context) string {
	return c.GetHeader(idempotencyHeader)
}

// IdempotencyMiddleware replays the stored response of a mutating request
// whose Idempotency-Key was seen before. Keys are scoped to the caller and
// route, so it must run after RequireSession.
func IdempotencyMiddleware(cache ResponseCache, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only apply to mutating methods.
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := IdempotencyKey(c)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := idempotencyCacheKey(c, key)

		var cached cachedResponse
		found, err := cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			// Cache error - proceed without idempotency.
			logger.Warn("idempotency cache read failed", zap.Error(err))
			c.Next()
			return
		}

		if found {
			for k, v := range cached.Headers {
				for _, val := range v {
					c.Header(k, val)
				}
			}
			c.Header(replayedHeader, "true")
			c.Data(cached.StatusCode, "application/json", cached.Body)
			c.Abort()
			return
		}

		w := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		c.Next()

		// A concurrent submission (409) may be retried with the same key.
		status := c.Writer.Status()
		if status >= 200 && status < 500 && status != http.StatusConflict {
			response := cachedResponse{
				StatusCode: status,
				Body:       w.body.Bytes(),
				Headers:    extractResponseHeaders(c),
			}
			if err := cache.SetJSON(context.WithoutCancel(ctx), cacheKey, &response, idempotencyTTL); err != nil {
				logger.Warn("idempotency cache write failed", zap.Error(err))
			}
		}
	}
}

func idempotencyCacheKey(c *gin.Context, key string) string {
	owner := "anonymous"
	if session, ok := SessionFrom(c); ok {
		owner = session.UserID
	}
	return "idempotency:" + owner + ":" + c.Request.Method + " " + c.FullPath() + ":" + key
}

// extractResponseHeaders extracts headers to cache.
func extractResponseHeaders(c *gin.Context) http.Header {
	headers := make(http.Header)
	// Only cache Content-Type header.
	if ct := c.Writer.Header().Get("Content-Type"); ct != "" {
		headers.Set("Content-Type", ct)
	}
	return headers
}
