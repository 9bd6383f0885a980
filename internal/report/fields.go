package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

const invoiceOpen = "open"

// Row is one report line keyed by report field name.
type Row map[string]any

// RowFromOrder projects an order onto the report field catalogue. Fields the
// order does not track (distance, documentCount, duration, clientType, expenses)
// are left empty.
func RowFromOrder(o *domain.Order) Row {
	revenue := 0.0
	paymentDate := ""
	invoiceStatus := invoiceOpen
	switch o.Status {
	case domain.OrderStatusCompleted:
		revenue = o.Fee
		invoiceStatus = "paid"
		paymentDate = domain.NewDate(o.UpdatedAt).String()
	case domain.OrderStatusCancelled:
		invoiceStatus = "cancelled"
	}

	expenses := 0.0

	return Row{
		"orderDate":     o.Appointment.Date.String(),
		"orderTime":     o.Appointment.Time,
		"orderType":     string(o.SigningType),
		"status":        string(o.Status),
		"fee":           o.Fee,
		"location":      o.Appointment.Address.String(),
		"distance":      nil,
		"clientName":    o.PointOfContact.Name,
		"clientType":    nil,
		"company":       o.PointOfContact.Company,
		"email":         o.PointOfContact.Email,
		"phone":         o.PointOfContact.Phone,
		"revenue":       revenue,
		"expenses":      expenses,
		"profit":        revenue - expenses,
		"invoiceStatus": invoiceStatus,
		"paymentDate":   paymentDate,
		"signingDate":   o.Appointment.Date.String(),
		"signingType":   string(o.SigningType),
		"signerName":    o.Signer.Name,
		"documentCount": nil,
		"duration":      nil,
	}
}

// FormatValue renders a row value as display text; nil renders empty.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case domain.Date:
		return val.String()
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
