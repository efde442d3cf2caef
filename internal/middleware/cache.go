package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl lets clients and proxies reuse successful schedule responses
// for maxAgeSeconds. The schedule only changes when a refresh completes.
// Error responses, including the 503 sent before the first load, are marked
// no-store.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	public := fmt.Sprintf("public, max-age=%d", maxAgeSeconds)
	return func(c *gin.Context) {
		c.Header("Cache-Control", public)
		c.Writer = &cacheWriter{ResponseWriter: c.Writer}
		c.Next()
	}
}

// cacheWriter swaps the cache header when a non-2xx status is set. Headers
// are still mutable at that point since gin sends them on the first write.
type cacheWriter struct {
	gin.ResponseWriter
}

func (cw *cacheWriter) WriteHeader(code int) {
	if code < 200 || code > 299 {
		cw.Header().Set("Cache-Control", "no-store")
	}
	cw.ResponseWriter.WriteHeader(code)
}

// NoStore marks responses that must never be cached, e.g. admin data.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
