package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartassist/smartassist-api/metrics"
	"github.com/smartassist/smartassist-api/querycache"
)

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache serves repeated GET requests from the query cache. Entries are keyed by
// the current user and request URI, so it must run after ResolveUser.
func Cache(qc *querycache.QueryCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if qc == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := querycache.Key(CurrentUserID(c), c.Request.RequestURI)
		if cached, found := qc.Get(key); found {
			metrics.RecordCacheLookup(true)
			for k, v := range cached.Header {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.Status)
			c.Writer.Write(cached.Body)
			c.Abort()
			return
		}
		metrics.RecordCacheLookup(false)
		c.Writer.Header().Set("X-Cache", "MISS")

		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 {
			qc.Set(key, &querycache.Entry{
				Status: blw.Status(),
				Header: blw.Header().Clone(),
				Body:   bytes.Clone(blw.body.Bytes()),
			})
		}
	}
}

// Invalidates evicts the cached reads under prefixes once the wrapped mutation
// succeeds.
func Invalidates(qc *querycache.QueryCache, prefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if qc == nil || status < 200 || status >= 300 {
			return
		}
		for _, prefix := range prefixes {
			qc.InvalidatePrefix(prefix)
		}
	}
}
