package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of a signing order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every valid status in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// ParseOrderStatus returns the status matching s, ignoring case.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, status := range OrderStatuses {
		if strings.EqualFold(string(status), s) {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", s)
}

// SigningType is the kind of loan signing
type SigningType string

const (
	SigningTypePurchase  SigningType = "Purchase"
	SigningTypeRefinance SigningType = "Refinance"
	SigningTypeHELOC     SigningType = "HELOC"
	SigningTypeOther     SigningType = "Other"
)

var signingTypes = map[SigningType]struct{}{
	SigningTypePurchase:  {},
	SigningTypeRefinance: {},
	SigningTypeHELOC:     {},
	SigningTypeOther:     {},
}

const (
	GeoPointType    = "Point"
	DefaultLanguage = "English"
)

// Address is a postal address
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

// String renders the address on one line, skipping empty parts.
func (a Address) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Street, a.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	tail := strings.TrimSpace(strings.Join([]string{a.State, a.ZipCode}, " "))
	if tail != "" {
		parts = append(parts, tail)
	}

	return strings.Join(parts, ", ")
}

// GeoPoint is a GeoJSON point; Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func (p GeoPoint) Longitude() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[0]
}

func (p GeoPoint) Latitude() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

// Appointment holds when and where the signing happens
type Appointment struct {
	Date     Date     `json:"date"`
	Time     string   `json:"time"`
	Address  Address  `json:"address"`
	Location GeoPoint `json:"location"`
}

// Signer is the borrower signing the documents
type Signer struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Language string `json:"language"`
}

// Contact is the title/escrow contact who placed the order
type Contact struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

// ConfirmationDetails records how the appointment was confirmed with the signer
type ConfirmationDetails struct {
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	ConfirmedBy string     `json:"confirmedBy,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	MessageLeft bool       `json:"messageLeft"`
}

// Order is a signing order owned by a single user
type Order struct {
	ID                     uuid.UUID            `json:"id"`
	UserID                 uuid.UUID            `json:"user"`
	FileNumber             string               `json:"fileNumber"`
	Status                 OrderStatus          `json:"status"`
	SigningType            SigningType          `json:"signingType"`
	Fee                    float64              `json:"fee"`
	Appointment            Appointment          `json:"appointment"`
	Signer                 Signer               `json:"signer"`
	PointOfContact         Contact              `json:"pointOfContact"`
	Instructions           string               `json:"instructions"`
	AdditionalInstructions string               `json:"additionalInstructions,omitempty"`
	ConfirmationDetails    *ConfirmationDetails `json:"confirmationDetails,omitempty"`
	CreatedAt              time.Time            `json:"createdAt"`
	UpdatedAt              time.Time            `json:"updatedAt"`
}

// ApplyDefaults fills the fields that have schema defaults and folds a
// recognised status to its canonical lower-case form.
func (o *Order) ApplyDefaults() {
	if o.Status == "" {
		o.Status = OrderStatusPending
	} else if status, err := ParseOrderStatus(string(o.Status)); err == nil {
		o.Status = status
	}
	if o.Signer.Language == "" {
		o.Signer.Language = DefaultLanguage
	}
	if o.Appointment.Location.Type == "" {
		o.Appointment.Location.Type = GeoPointType
	}
	if len(o.Appointment.Location.Coordinates) == 0 {
		o.Appointment.Location.Coordinates = []float64{0, 0}
	}
}

// Validate checks required fields and enum values.
func (o *Order) Validate() error {
	v := newValidator()

	v.check(o.UserID != uuid.Nil, "user", "is required")
	v.required(o.FileNumber, "fileNumber")
	v.required(string(o.SigningType), "signingType")
	if o.SigningType != "" {
		_, ok := signingTypes[o.SigningType]
		v.check(ok, "signingType", "must be one of Purchase, Refinance, HELOC, Other")
	}
	if o.Status != "" {
		_, err := ParseOrderStatus(string(o.Status))
		v.check(err == nil, "status", "must be one of pending, confirmed, completed, cancelled")
	}
	v.check(o.Fee >= 0, "fee", "must not be negative")
	v.check(!o.Appointment.Date.IsZero(), "appointment.date", "is required")
	v.required(o.Appointment.Time, "appointment.time")
	v.required(o.Signer.Name, "signer.name")
	v.required(o.Instructions, "instructions")

	loc := o.Appointment.Location
	if loc.Type != "" {
		v.check(loc.Type == GeoPointType, "appointment.location.type", "must be Point")
	}
	if len(loc.Coordinates) > 0 {
		v.check(len(loc.Coordinates) == 2, "appointment.location.coordinates", "must be [longitude, latitude]")
		if len(loc.Coordinates) == 2 {
			v.check(loc.Longitude() >= -180 && loc.Longitude() <= 180, "appointment.location.coordinates", "longitude out of range")
			v.check(loc.Latitude() >= -90 && loc.Latitude() <= 90, "appointment.location.coordinates", "latitude out of range")
		}
	}

	checkEmail(v, o.Signer.Email, "signer.email")
	checkEmail(v, o.PointOfContact.Email, "pointOfContact.email")

	return v.err()
}

// Confirm marks the order as confirmed with the signer.
func (o *Order) Confirm(by, notes string, messageLeft bool, now time.Time) {
	o.Status = OrderStatusConfirmed
	o.ConfirmationDetails = &ConfirmationDetails{
		ConfirmedAt: &now,
		ConfirmedBy: by,
		Notes:       notes,
		MessageLeft: messageLeft,
	}
}

// Touch stamps the order as saved at now.
func (o *Order) Touch(now time.Time) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
}

func checkEmail(v *validator, address, field string) {
	if address == "" {
		return
	}
	_, err := mail.ParseAddress(address)
	v.check(err == nil, field, "must be a valid email address")
}
