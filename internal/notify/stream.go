package notify

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultKeepAlive is the interval between keep-alive comments.
const DefaultKeepAlive = 25 * time.Second

// Stream returns a handler that streams hub events as Server-Sent Events
// until the client disconnects.
func Stream(hub *Hub, keepAlive time.Duration, logger *zap.SugaredLogger) gin.HandlerFunc {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}

	return func(c *gin.Context) {
		events, cancel := hub.Subscribe()
		defer cancel()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		// The server write timeout would otherwise cut the stream.
		if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
			logger.Debugw("write deadline not cleared", "error", err)
		}

		logger.Debugw("event stream opened", "client_ip", c.ClientIP(), "subscribers", hub.SubscriberCount())

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		done := c.Request.Context().Done()
		c.Stream(func(w io.Writer) bool {
			select {
			case <-done:
				return false
			case event, ok := <-events:
				if !ok {
					return false
				}
				c.SSEvent(event.Name, event)
				return true
			case <-ticker.C:
				if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
					return false
				}
				return true
			}
		})

		logger.Debugw("event stream closed", "client_ip", c.ClientIP())
	}
}
