package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

// OrderSource returns every order owned by userID.
type OrderSource func(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)

// Generator turns a report template into rendered files using the owner's orders
type Generator struct {
	orders OrderSource
	now    func() time.Time
}

func NewGenerator(orders OrderSource) *Generator {
	return &Generator{
		orders: orders,
		now:    time.Now,
	}
}

// Rows fetches the owner's orders and applies the template's filters and ordering.
func (g *Generator) Rows(ctx context.Context, cfg *domain.ReportConfig) ([]Row, error) {
	if cfg.UserID == uuid.Nil {
		return nil, errors.New("report owner is required")
	}

	orders, err := g.orders(ctx, cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetch orders for report %q: %w", cfg.Name, err)
	}

	rows := make([]Row, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, RowFromOrder(o))
	}

	return Apply(rows, cfg)
}

// Generate renders the report in a single format.
func (g *Generator) Generate(ctx context.Context, cfg *domain.ReportConfig, format Format) (*File, error) {
	rows, err := g.Rows(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return g.render(cfg, rows, format)
}

// GenerateAll renders the PDF and Excel versions concurrently from one data fetch.
func (g *Generator) GenerateAll(ctx context.Context, cfg *domain.ReportConfig) ([]*File, error) {
	rows, err := g.Rows(ctx, cfg)
	if err != nil {
		return nil, err
	}

	formats := []Format{FormatPDF, FormatExcel}
	files := make([]*File, len(formats))

	eg, _ := errgroup.WithContext(ctx)
	for i, format := range formats {
		eg.Go(func() error {
			f, err := g.render(cfg, rows, format)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

func (g *Generator) render(cfg *domain.ReportConfig, rows []Row, format Format) (*File, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatPDF:
		data, err = RenderPDF(cfg, rows)
	case FormatExcel:
		data, err = RenderExcel(cfg, rows)
	default:
		return nil, fmt.Errorf("Unsupported format: %s", format) //nolint:staticcheck // matches ParseFormat
	}
	if err != nil {
		return nil, err
	}

	return &File{
		Name:        FileName(cfg.Name, format, g.now()),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}
