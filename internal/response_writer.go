package internal

import (
	"net/http"
	"sync"
)

// ResponseWriter wraps the writer handed to the App. It remembers the status
// for the access log and holds hooks that must run while headers can still
// change, such as writing the session cookie.
type ResponseWriter struct {
	http.ResponseWriter

	mu      sync.Mutex
	status  int
	size    int64
	written bool
	hooks   []func()
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// OnBeforeWrite queues fn to run once before the headers are sent.
// Hooks queued after that point never run.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	w.hooks = append(w.hooks, fn)
	w.mu.Unlock()
}

// commit runs the hooks and sends code the first time it is called.
func (w *ResponseWriter) commit(code int) {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return
	}
	w.written = true
	w.status = code
	hooks := w.hooks
	w.hooks = nil
	w.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) WriteHeader(code int) {
	w.commit(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.commit(http.StatusOK)
	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Status is the status sent, or 200 before anything was written.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size is the number of body bytes written.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

func (w *ResponseWriter) Flush() {
	w.commit(http.StatusOK)
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
