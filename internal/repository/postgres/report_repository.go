package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

const (
	ReportResource = "report"
)

// ReportRepository stores report templates as JSONB documents
type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

func (r *ReportRepository) CreateReport(ctx context.Context, report *domain.ReportConfig) error {
	doc, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", report.ID, err)
	}

	_, err = r.pool.Exec(ctx,
		"INSERT INTO reports (id, user_id, schedule_enabled, document, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)",
		report.ID, report.UserID, report.Scheduled(), doc, report.CreatedAt, report.LastModified,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

func (r *ReportRepository) GetReportByID(ctx context.Context, userID, id uuid.UUID) (*domain.ReportConfig, error) {
	return getDocument[domain.ReportConfig](ctx, r.pool, ReportResource, id,
		"SELECT document FROM reports WHERE id = $1 AND user_id = $2", id, userID,
	)
}

func (r *ReportRepository) ListReports(ctx context.Context, userID uuid.UUID) ([]*domain.ReportConfig, error) {
	return listDocuments[domain.ReportConfig](ctx, r.pool, ReportResource,
		"SELECT document FROM reports WHERE user_id = $1 ORDER BY updated_at DESC", userID,
	)
}

// ListScheduled returns every report with an enabled schedule, across all users.
func (r *ReportRepository) ListScheduled(ctx context.Context) ([]*domain.ReportConfig, error) {
	return listDocuments[domain.ReportConfig](ctx, r.pool, ReportResource,
		"SELECT document FROM reports WHERE schedule_enabled ORDER BY created_at",
	)
}

func (r *ReportRepository) UpdateReport(ctx context.Context, report *domain.ReportConfig) error {
	doc, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", report.ID, err)
	}

	tag, err := r.pool.Exec(ctx,
		"UPDATE reports SET schedule_enabled = $3, document = $4, updated_at = $5 WHERE id = $1 AND user_id = $2",
		report.ID, report.UserID, report.Scheduled(), doc, report.LastModified,
	)
	if err != nil {
		return fmt.Errorf("failed to update report %s: %w", report.ID, err)
	}

	return expectAffected(tag, ReportResource, report.ID)
}

func (r *ReportRepository) DeleteReport(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM reports WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete report %s: %w", id, err)
	}

	return expectAffected(tag, ReportResource, id)
}
