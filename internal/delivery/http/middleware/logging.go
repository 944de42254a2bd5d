package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const subjectKey contextKey = "request_subject"

// requestSubject заполняется AuthMiddleware, чтобы лог запроса знал субъекта
type requestSubject struct {
	principal *domain.Principal
}

// rememberSubject сохраняет субъект для лога запроса, если логирование включено
func rememberSubject(ctx context.Context, principal *domain.Principal) {
	if holder, ok := ctx.Value(subjectKey).(*requestSubject); ok {
		holder.principal = principal
	}
}

// statusRecorder запоминает код ответа и размер тела
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// LoggingMiddleware пишет одну строку лога на запрос; уровень зависит от кода ответа
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			subject := &requestSubject{}
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r.WithContext(context.WithValue(r.Context(), subjectKey, subject)))

			fields := map[string]interface{}{
				"request_id":  chiMiddleware.GetReqID(r.Context()),
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rw.status,
				"duration_ms": time.Since(start).Milliseconds(),
				"bytes":       rw.bytes,
				"remote_addr": r.RemoteAddr,
			}
			if p := subject.principal; p != nil {
				fields["subject_id"] = p.SubjectID.String()
				fields["role"] = string(p.Role)
				if p.ManagementCodeID != nil {
					fields["management_code_id"] = p.ManagementCodeID.String()
				}
			}

			switch {
			case rw.status >= http.StatusInternalServerError:
				log.Error("HTTP request", fields)
			case rw.status >= http.StatusBadRequest:
				log.Warn("HTTP request", fields)
			default:
				log.Info("HTTP request", fields)
			}
		})
	}
}
