package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/response"
	"github.com/CameronXie/nsa-protrack/internal/domain"
	"github.com/CameronXie/nsa-protrack/internal/report"
)

const unsupportedFormatCode = "unsupported_format"

type ReportRepository interface {
	CreateReport(ctx context.Context, r *domain.ReportConfig) error
	GetReportByID(ctx context.Context, userID, id uuid.UUID) (*domain.ReportConfig, error)
	ListReports(ctx context.Context, userID uuid.UUID) ([]*domain.ReportConfig, error)
	UpdateReport(ctx context.Context, r *domain.ReportConfig) error
	DeleteReport(ctx context.Context, userID, id uuid.UUID) error
}

// ReportScheduler keeps cron jobs in step with saved reports.
type ReportScheduler interface {
	Schedule(r *domain.ReportConfig) (*time.Time, error)
	Unschedule(id uuid.UUID)
	Run(ctx context.Context, r *domain.ReportConfig) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, cfg *domain.ReportConfig, format report.Format) (*report.File, error)
}

// GenerateReportRequest is the wrapped generate body. The flat form, where the
// report fields sit next to "format", is accepted as well.
type GenerateReportRequest struct {
	ReportConfig *domain.ReportConfig `json:"reportConfig"`
	Format       string               `json:"format"`
}

type RunReportResponse struct {
	Status     string   `json:"status"`
	Recipients []string `json:"recipients"`
}

// ReportHandler manages report templates, ad-hoc generation and scheduled delivery
type ReportHandler struct {
	repo      ReportRepository
	scheduler ReportScheduler
	generator ReportGenerator
	now       func() time.Time
	logger    *slog.Logger
}

func NewReportHandler(
	repo ReportRepository,
	scheduler ReportScheduler,
	generator ReportGenerator,
	logger *slog.Logger,
) *ReportHandler {
	return &ReportHandler{
		repo:      repo,
		scheduler: scheduler,
		generator: generator,
		now:       time.Now,
		logger:    logger,
	}
}

// Fields handles GET /api/v1/reports/fields
func (h *ReportHandler) Fields(w http.ResponseWriter, _ *http.Request) {
	response.JSONResponse(w, http.StatusOK, domain.ReportFields)
}

// CreateReport handles POST /api/v1/reports
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	cfg := new(domain.ReportConfig)
	if !decodeJSON(w, r, cfg) {
		return
	}
	cfg.ID = uuid.New()
	cfg.UserID = userID
	cfg.CreatedAt = time.Time{}

	if err := cfg.Validate(); err != nil {
		writeError(w, r, h.logger, "invalid report", err)
		return
	}
	cfg.Touch(h.now().UTC())

	if !h.schedule(w, r, cfg) {
		return
	}

	if err := h.repo.CreateReport(r.Context(), cfg); err != nil {
		h.scheduler.Unschedule(cfg.ID)
		writeError(w, r, h.logger, "failed to create report", err)
		return
	}

	h.logger.InfoContext(r.Context(), "report_saved", "report_id", cfg.ID, "scheduled", cfg.Scheduled())
	response.JSONResponse(w, http.StatusCreated, cfg)
}

func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	reports, err := h.repo.ListReports(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, "failed to list reports", err)
		return
	}

	response.JSONResponse(w, http.StatusOK, reports)
}

func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.load(w, r)
	if !ok {
		return
	}
	response.JSONResponse(w, http.StatusOK, cfg)
}

// UpdateReport handles PUT /api/v1/reports/{id}. The job is rescheduled, or
// removed when the schedule is disabled.
func (h *ReportHandler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.load(w, r)
	if !ok {
		return
	}

	id, userID, createdAt := cfg.ID, cfg.UserID, cfg.CreatedAt
	if !decodeJSON(w, r, cfg) {
		return
	}
	cfg.ID, cfg.UserID, cfg.CreatedAt = id, userID, createdAt

	if err := cfg.Validate(); err != nil {
		writeError(w, r, h.logger, "invalid report", err)
		return
	}
	cfg.Touch(h.now().UTC())

	if !h.schedule(w, r, cfg) {
		return
	}

	if err := h.repo.UpdateReport(r.Context(), cfg); err != nil {
		h.restoreSchedule(r.Context(), userID, id)
		writeError(w, r, h.logger, "failed to update report", err)
		return
	}

	h.logger.InfoContext(r.Context(), "report_saved", "report_id", cfg.ID, "scheduled", cfg.Scheduled())
	response.JSONResponse(w, http.StatusOK, cfg)
}

func (h *ReportHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteReport(r.Context(), userID, id); err != nil {
		writeError(w, r, h.logger, "failed to delete report", err)
		return
	}
	h.scheduler.Unschedule(id)

	h.logger.InfoContext(r.Context(), "report_deleted", "report_id", id)
	response.NoContent(w)
}

// GenerateReport handles POST /api/v1/reports/generate and streams the rendered file.
func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	cfg, rawFormat, ok := decodeGenerateRequest(w, r)
	if !ok {
		return
	}

	format, err := report.ParseFormat(rawFormat)
	if err != nil {
		response.JSONErrorResponse(w, http.StatusBadRequest, unsupportedFormatCode, err.Error())
		return
	}

	cfg.UserID = userID
	if err := cfg.Validate(); err != nil {
		writeError(w, r, h.logger, "invalid report", err)
		return
	}

	file, err := h.generator.Generate(r.Context(), cfg, format)
	if err != nil {
		writeError(w, r, h.logger, "failed to generate report", err)
		return
	}

	h.logger.InfoContext(r.Context(), "report_generated", "user_id", userID, "format", string(format), "bytes", len(file.Data))
	response.FileResponse(w, file.Name, file.ContentType, file.Data)
}

// RunReport handles POST /api/v1/reports/{id}/run, emailing the report to its recipients now.
func (h *ReportHandler) RunReport(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.load(w, r)
	if !ok {
		return
	}

	if cfg.Schedule == nil || len(cfg.Schedule.Recipients) == 0 {
		badRequest(w, "report has no recipients")
		return
	}

	if err := h.scheduler.Run(r.Context(), cfg); err != nil {
		writeError(w, r, h.logger, "failed to run report", err)
		return
	}

	h.logger.InfoContext(r.Context(), "report_sent", "report_id", cfg.ID, "recipients", len(cfg.Schedule.Recipients), "trigger", "manual")
	response.JSONResponse(w, http.StatusOK, RunReportResponse{Status: "sent", Recipients: cfg.Schedule.Recipients})
}

// schedule registers the report's job and records the next activation on it.
func (h *ReportHandler) schedule(w http.ResponseWriter, r *http.Request, cfg *domain.ReportConfig) bool {
	next, err := h.scheduler.Schedule(cfg)
	if err != nil {
		writeError(w, r, h.logger, "failed to schedule report", err)
		return false
	}

	if cfg.Schedule != nil {
		cfg.Schedule.NextRun = next
	}
	return true
}

func (h *ReportHandler) restoreSchedule(ctx context.Context, userID, id uuid.UUID) {
	stored, err := h.repo.GetReportByID(ctx, userID, id)
	if err != nil {
		h.scheduler.Unschedule(id)
		h.logger.WarnContext(ctx, "report_schedule_restore_failed", "report_id", id, "error", err)
		return
	}

	if _, err := h.scheduler.Schedule(stored); err != nil {
		h.logger.WarnContext(ctx, "report_schedule_restore_failed", "report_id", id, "error", err)
	}
}

func (h *ReportHandler) load(w http.ResponseWriter, r *http.Request) (*domain.ReportConfig, bool) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return nil, false
	}
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}

	cfg, err := h.repo.GetReportByID(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, h.logger, "failed to get report", err)
		return nil, false
	}

	return cfg, true
}

func decodeGenerateRequest(w http.ResponseWriter, r *http.Request) (*domain.ReportConfig, string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		badRequest(w, invalidRequestBodyMessage)
		return nil, "", false
	}

	var req GenerateReportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		badRequest(w, invalidRequestBodyMessage)
		return nil, "", false
	}

	if req.ReportConfig != nil {
		return req.ReportConfig, req.Format, true
	}

	cfg := new(domain.ReportConfig)
	if err := json.Unmarshal(body, cfg); err != nil {
		badRequest(w, invalidRequestBodyMessage)
		return nil, "", false
	}

	return cfg, req.Format, true
}
