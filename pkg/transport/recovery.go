package transport

import (
	"log/slog"
	"net/http"

	"github.com/geleit/geleit/pkg/api"
)

// Recovery returns middleware that catches panics in the handler chain
// and converts them to server error responses. The server keeps
// accepting requests after a recovered panic.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic in handler",
						"panic", rec,
						"path", r.URL.Path,
						"request_id", RequestIDFromContext(r.Context()),
					)
					WriteAPIError(w, api.NewServerError("internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
