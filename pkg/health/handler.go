package health

import (
	"encoding/json"
	"net/http"
	"strings"
)

// LivenessHandler answers 200 while the process can serve HTTP at all.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusOK, &Response{Status: StatusHealthy}, "ok")
	}
}

// ReadinessHandler runs checks on every request. It answers 503 and names the
// failed dependencies when any check fails.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	cfg := newConfig(opts...)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := runChecks(r.Context(), checks, cfg)
		if resp.Healthy() {
			respond(w, r, http.StatusOK, resp, "ok")
			return
		}
		respond(w, r, http.StatusServiceUnavailable, resp, "unavailable: "+strings.Join(resp.Failed(), ", "))
	}
}

// respond writes resp as JSON when asked for with ?format=json or an
// application/json Accept header, and text otherwise.
func respond(w http.ResponseWriter, r *http.Request, status int, resp *Response, text string) {
	w.Header().Set("Cache-Control", "no-store")

	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}
