// Package finance derives revenue figures from signing orders.
package finance

import (
	"cmp"
	"slices"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

const monthLayout = "2006-01"

type Month struct {
	Month       string  `json:"month"`
	Orders      int     `json:"orders"`
	Completed   int     `json:"completed"`
	Revenue     float64 `json:"revenue"`
	Outstanding float64 `json:"outstanding"`
}

// Summary aggregates orders whose appointment falls inside a date range
type Summary struct {
	From                *domain.Date               `json:"from,omitempty"`
	To                  *domain.Date               `json:"to,omitempty"`
	TotalOrders         int                        `json:"totalOrders"`
	ByStatus            map[domain.OrderStatus]int `json:"byStatus"`
	Revenue             float64                    `json:"revenue"`
	Outstanding         float64                    `json:"outstanding"`
	AverageCompletedFee float64                    `json:"averageCompletedFee"`
	Months              []Month                    `json:"months"`
}

// Summarize aggregates the orders with an appointment date in [from, to].
// A nil bound leaves that side of the range open. Revenue counts completed
// orders; pending and confirmed orders are outstanding.
func Summarize(orders []*domain.Order, from, to *domain.Date) Summary {
	s := Summary{
		From:     from,
		To:       to,
		ByStatus: make(map[domain.OrderStatus]int, len(domain.OrderStatuses)),
		Months:   []Month{},
	}
	for _, status := range domain.OrderStatuses {
		s.ByStatus[status] = 0
	}

	months := make(map[string]*Month)
	completed := 0

	for _, o := range orders {
		date := o.Appointment.Date
		if from != nil && date.Before(from.Time) {
			continue
		}
		if to != nil && date.After(to.Time) {
			continue
		}

		key := date.Format(monthLayout)
		m, ok := months[key]
		if !ok {
			m = &Month{Month: key}
			months[key] = m
		}

		s.TotalOrders++
		s.ByStatus[o.Status]++
		m.Orders++

		switch o.Status {
		case domain.OrderStatusCompleted:
			completed++
			s.Revenue += o.Fee
			m.Completed++
			m.Revenue += o.Fee
		case domain.OrderStatusPending, domain.OrderStatusConfirmed:
			s.Outstanding += o.Fee
			m.Outstanding += o.Fee
		}
	}

	if completed > 0 {
		s.AverageCompletedFee = s.Revenue / float64(completed)
	}

	for _, m := range months {
		s.Months = append(s.Months, *m)
	}
	slices.SortFunc(s.Months, func(a, b Month) int { return cmp.Compare(a.Month, b.Month) })

	return s
}
