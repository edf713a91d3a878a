package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

// responseRecorder tees the handler's output so a copy can be stored.
type responseRecorder struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// cacheKey scopes entries by request URI and bearer credential, so a
// response produced for one caller is never replayed to another.
func cacheKey(c *gin.Context) string {
	return c.Request.RequestURI + "\x00" + c.GetHeader("Authorization")
}

// Cache serves repeated GET requests from an in-memory store. Only 2xx
// responses are cached.
func Cache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKey(c)
		if entry, found := store.Get(key); found {
			cached := entry.(*cachedResponse)
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		recorder := &responseRecorder{ResponseWriter: c.Writer, buf: bytes.NewBuffer(nil)}
		c.Writer = recorder

		c.Next()

		if recorder.Status() >= 200 && recorder.Status() < 300 {
			store.Set(key, &cachedResponse{
				status:  recorder.Status(),
				headers: recorder.Header().Clone(),
				body:    recorder.buf.Bytes(),
			}, ttl)
		}
	}
}
