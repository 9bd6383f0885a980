package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

func mustDate(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testOrder(fileNumber, date string, status domain.OrderStatus, fee float64, company string) *domain.Order {
	return &domain.Order{
		ID:          uuid.New(),
		FileNumber:  fileNumber,
		Status:      status,
		SigningType: domain.SigningTypeRefinance,
		Fee:         fee,
		Appointment: domain.Appointment{
			Date: mustDate(date),
			Time: "10:00 AM",
			Address: domain.Address{
				Street:  "1 Main St",
				City:    "Austin",
				State:   "TX",
				ZipCode: "78701",
			},
		},
		Signer: domain.Signer{Name: "Signer " + fileNumber},
		PointOfContact: domain.Contact{
			Name:    "Escrow Officer",
			Company: company,
			Email:   "escrow@example.com",
		},
		UpdatedAt: time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC),
	}
}

func testReport(columns ...string) *domain.ReportConfig {
	return &domain.ReportConfig{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Name:        "Weekly Revenue",
		Description: "Completed orders",
		Columns:     columns,
	}
}
