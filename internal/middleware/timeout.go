package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout returns a gin middleware that fails requests running longer than d.
//
// The downstream handlers run with a deadline on the request context and
// write to a buffered response. When the chain finishes in time the buffered
// status, headers, and body are flushed to the client. On timeout the client
// gets a 408 JSON envelope and any late writes from the handler are dropped.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		w := c.Writer
		buf := newTimeoutWriter(w)
		c.Writer = buf

		finished := make(chan struct{})
		panicked := make(chan any, 1)

		go func() {
			defer func() {
				if r := recover(); r != nil {
					panicked <- r
				}
			}()
			c.Next()
			close(finished)
		}()

		select {
		case <-finished:
			c.Writer = w
			buf.flushTo(w)
		case p := <-panicked:
			c.Writer = w
			panic(p)
		case <-ctx.Done():
			buf.markTimedOut()
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusRequestTimeout)
			_, _ = w.Write([]byte(`{"code":408,"message":"request timeout","data":null}`))
		}
	}
}

// timeoutWriter buffers everything the handler writes so nothing reaches the
// client until the handler beats the deadline. After markTimedOut all writes
// are silently discarded.
type timeoutWriter struct {
	gin.ResponseWriter

	mu          sync.Mutex
	headers     http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
	timedOut    bool
}

func newTimeoutWriter(w gin.ResponseWriter) *timeoutWriter {
	return &timeoutWriter{
		ResponseWriter: w,
		headers:        make(http.Header),
		status:         http.StatusOK,
	}
}

func (tw *timeoutWriter) Header() http.Header { return tw.headers }

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.status = code
	tw.wroteHeader = true
}

// WriteHeaderNow is a no-op: the real header is written on flush.
func (tw *timeoutWriter) WriteHeaderNow() {}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, nil
	}
	return tw.body.Write(b)
}

func (tw *timeoutWriter) WriteString(s string) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, nil
	}
	return tw.body.WriteString(s)
}

func (tw *timeoutWriter) Status() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.status
}

func (tw *timeoutWriter) Size() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.body.Len()
}

func (tw *timeoutWriter) Written() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.wroteHeader || tw.body.Len() > 0
}

func (tw *timeoutWriter) markTimedOut() {
	tw.mu.Lock()
	tw.timedOut = true
	tw.mu.Unlock()
}

func (tw *timeoutWriter) flushTo(w gin.ResponseWriter) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return
	}
	dst := w.Header()
	for k, vals := range tw.headers {
		dst[k] = vals
	}
	w.WriteHeader(tw.status)
	_, _ = w.Write(tw.body.Bytes())
}
