package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"copydesk/internal/httputil"
)

// Recovery turns a panicking handler into a 500 problem response. The log
// entry carries the request ID and shop so it can be matched to the request
// log line.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					// Client went away mid-stream; let net/http handle it
					panic(rec)
				}

				logger.Error("panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", httputil.GetRequestID(r),
					"shop", httputil.GetShop(r),
					"stack", string(debug.Stack()),
				)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
