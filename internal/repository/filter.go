package repository

import (
	"time"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

// OrderFilter narrows an order listing. Zero values are ignored.
type OrderFilter struct {
	Status domain.OrderStatus
	From   time.Time
	To     time.Time
}
