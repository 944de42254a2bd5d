package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/frontandrew/caretrip/internal/pkg/logger"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// RecoveryMiddleware превращает panic обработчика в 500 с обычным JSON конвертом
func RecoveryMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// Обрыв соединения обрабатывает net/http
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("Panic recovered", map[string]interface{}{
					"panic":      rec,
					"stack":      string(debug.Stack()),
					"method":     r.Method,
					"path":       r.URL.Path,
					"request_id": chiMiddleware.GetReqID(r.Context()),
				})

				respondError(w, http.StatusInternalServerError, "Internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
