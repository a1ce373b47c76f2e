package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// bodyCacheWriter buffers the response body so a hash can be computed before sending.
type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCacheWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bodyCacheWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// ETag adds a content hash to successful GET responses and answers 304 when
// the client's If-None-Match matches. Clients must revalidate every time, so
// a settings change is visible on the next poll.
func ETag() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		bcw := &bodyCacheWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = bcw
		c.Next()
		c.Writer = bcw.ResponseWriter

		body := bcw.body.Bytes()
		if c.Writer.Status() == http.StatusOK && len(body) > 0 {
			hash := sha256.Sum256(stripVolatile(body))
			etag := fmt.Sprintf(`"%x"`, hash[:16])
			c.Header("ETag", etag)
			c.Header("Cache-Control", "no-cache")
			if c.GetHeader("If-None-Match") == etag {
				c.Writer.Header().Del("Content-Type")
				c.Writer.WriteHeader(http.StatusNotModified)
				c.Writer.WriteHeaderNow()
				return
			}
		}
		_, _ = c.Writer.Write(body)
	}
}

// stripVolatile drops the envelope fields that change on every response so
// identical data hashes to the same ETag.
func stripVolatile(body []byte) []byte {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return body
	}
	delete(envelope, "timestamp")
	delete(envelope, "trace_id")
	out, err := json.Marshal(envelope)
	if err != nil {
		return body
	}
	return out
}
