package middlewares

import (
	"bytes"
	"io"
	"net/http"

	"wbhub/internal/app/infra/persistence/redisx"
	"wbhub/internal/app/pkg/ginx"
	"wbhub/internal/app/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Dedup rejects a request whose normalized body hash is already locked in
// Redis: the same form submitted twice in quick succession runs once. A
// Redis outage lets requests through; the ledger's conflict-ignore inserts
// make the duplicate safe, just wasteful.
func Dedup(client *redisx.DedupClient, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			ginx.BadRequest(c, "unreadable request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		acquired, key, err := client.AcquireRequestLock(c.Request.Context(), c.FullPath(), body)
		if err != nil {
			log.Warnf(c.Request.Context(), "dedup lock unavailable, letting request through: %v", err)
		}
		if !acquired {
			ginx.Error(c, http.StatusConflict, "identical request already in progress")
			c.Abort()
			return
		}

		c.Next()

		// free the slot early on failure so the client can retry at once
		if c.Writer.Status() >= http.StatusInternalServerError {
			if err := client.ReleaseRequestLock(c.Request.Context(), key); err != nil {
				log.Warnf(c.Request.Context(), "dedup lock release: %v", err)
			}
		}
	}
}
