package http

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/usecase/report"
	"github.com/google/uuid"
)

// ReportService определяет интерфейс сервиса отчетов
type ReportService interface {
	Completion(ctx context.Context, scope uuid.UUID, req *report.CompletionRequest) ([]domain.CompletionGroup, error)
	RoutePerformance(ctx context.Context, scope uuid.UUID) ([]domain.RoutePerformance, error)
	Dashboard(ctx context.Context, scope uuid.UUID) (*domain.Dashboard, error)
	Export(ctx context.Context, scope uuid.UUID, req *report.ExportRequest) (*report.ExportFile, error)
}

// ReportHandler обрабатывает запросы отчетов и выгрузок
type ReportHandler struct {
	reportService ReportService
	logger        logger.Logger
}

// NewReportHandler создает новый handler
func NewReportHandler(reportService ReportService, logger logger.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// Completion возвращает процент выполнения по группам
// GET /api/v1/reports/completion?kind=&from=&to=&group_by=
func (h *ReportHandler) Completion(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	groups, err := h.reportService.Completion(r.Context(), scope, &report.CompletionRequest{
		Kind:    q.Get("kind"),
		From:    q.Get("from"),
		To:      q.Get("to"),
		GroupBy: q.Get("group_by"),
	})
	if err != nil {
		handleError(w, r, h.logger, err, "build completion report")
		return
	}

	respondSuccess(w, http.StatusOK, groups)
}

// RoutePerformance сравнивает время маршрутов за месяц и за сегодня
// GET /api/v1/reports/route-performance
func (h *ReportHandler) RoutePerformance(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}

	perf, err := h.reportService.RoutePerformance(r.Context(), scope)
	if err != nil {
		handleError(w, r, h.logger, err, "build route performance report")
		return
	}

	respondSuccess(w, http.StatusOK, perf)
}

// Dashboard возвращает сводку для главной страницы
// GET /api/v1/reports/dashboard
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}

	dash, err := h.reportService.Dashboard(r.Context(), scope)
	if err != nil {
		handleError(w, r, h.logger, err, "build dashboard")
		return
	}

	respondSuccess(w, http.StatusOK, dash)
}

// Export отдает файл выгрузки записей
// GET /api/v1/exports/{kind}?from=&to=&format=csv|xlsx
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	file, err := h.reportService.Export(r.Context(), scope, &report.ExportRequest{
		Kind:   kind,
		From:   q.Get("from"),
		To:     q.Get("to"),
		Format: q.Get("format"),
	})
	if err != nil {
		handleError(w, r, h.logger, err, "export records")
		return
	}

	// Файл собирается в памяти до отправки заголовков
	var buf bytes.Buffer
	if err := file.WriteTo(&buf); err != nil {
		handleError(w, r, h.logger, err, "export records")
		return
	}

	w.Header().Set("Content-Type", file.Format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
