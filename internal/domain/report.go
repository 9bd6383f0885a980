package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

type FilterOperator string

const (
	OperatorEquals      FilterOperator = "equals"
	OperatorContains    FilterOperator = "contains"
	OperatorGreaterThan FilterOperator = "greaterThan"
	OperatorLessThan    FilterOperator = "lessThan"
	OperatorBetween     FilterOperator = "between"
	OperatorIn          FilterOperator = "in"
)

var filterOperators = map[FilterOperator]struct{}{
	OperatorEquals:      {},
	OperatorContains:    {},
	OperatorGreaterThan: {},
	OperatorLessThan:    {},
	OperatorBetween:     {},
	OperatorIn:          {},
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ReportFieldCategory groups the fields offered by the report builder
type ReportFieldCategory struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// ReportFields is the catalogue of selectable report fields.
var ReportFields = []ReportFieldCategory{
	{Name: "order", Fields: []string{"orderDate", "orderTime", "orderType", "status", "fee", "location", "distance"}},
	{Name: "client", Fields: []string{"clientName", "clientType", "company", "email", "phone"}},
	{Name: "financial", Fields: []string{"revenue", "expenses", "profit", "invoiceStatus", "paymentDate"}},
	{Name: "signing", Fields: []string{"signingDate", "signingType", "signerName", "documentCount", "duration"}},
}

var knownReportFields = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, c := range ReportFields {
		for _, f := range c.Fields {
			m[f] = struct{}{}
		}
	}
	return m
}()

// IsReportField reports whether name is in the field catalogue.
func IsReportField(name string) bool {
	_, ok := knownReportFields[name]
	return ok
}

type FilterConfig struct {
	Field    string         `json:"field"`
	Operator FilterOperator `json:"operator"`
	Value    string         `json:"value"`
}

type SortConfig struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

type ScheduleConfig struct {
	Enabled    bool       `json:"enabled"`
	Frequency  Frequency  `json:"frequency"`
	Time       string     `json:"time"`
	Recipients []string   `json:"recipients"`
	NextRun    *time.Time `json:"nextRun,omitempty"`
}

// ReportConfig is a saved report template
type ReportConfig struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Filters      []FilterConfig  `json:"filters"`
	Columns      []string        `json:"columns"`
	GroupBy      []string        `json:"groupBy,omitempty"`
	SortBy       []SortConfig    `json:"sortBy,omitempty"`
	Schedule     *ScheduleConfig `json:"schedule,omitempty"`
	LastModified time.Time       `json:"lastModified"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Scheduled reports whether the report has an enabled schedule.
func (r *ReportConfig) Scheduled() bool {
	return r.Schedule != nil && r.Schedule.Enabled
}

// Validate checks the template without requiring an owner, so that ad-hoc
// configurations posted to the generate endpoint can be validated too.
func (r *ReportConfig) Validate() error {
	v := newValidator()

	v.required(r.Name, "name")
	v.check(len(r.Columns) > 0, "columns", "at least one column is required")
	for i, c := range r.Columns {
		v.check(IsReportField(c), fmt.Sprintf("columns[%d]", i), fmt.Sprintf("unknown field %q", c))
	}

	for i, f := range r.Filters {
		v.check(IsReportField(f.Field), fmt.Sprintf("filters[%d].field", i), fmt.Sprintf("unknown field %q", f.Field))
		_, ok := filterOperators[f.Operator]
		v.check(ok, fmt.Sprintf("filters[%d].operator", i), fmt.Sprintf("unknown operator %q", f.Operator))
		if f.Operator == OperatorBetween {
			v.check(len(strings.Split(f.Value, ",")) == 2, fmt.Sprintf("filters[%d].value", i), "between expects two comma separated values")
		}
	}

	for i, g := range r.GroupBy {
		v.check(IsReportField(g), fmt.Sprintf("groupBy[%d]", i), fmt.Sprintf("unknown field %q", g))
	}

	for i, s := range r.SortBy {
		v.check(IsReportField(s.Field), fmt.Sprintf("sortBy[%d].field", i), fmt.Sprintf("unknown field %q", s.Field))
		v.check(s.Direction == SortAsc || s.Direction == SortDesc, fmt.Sprintf("sortBy[%d].direction", i), "must be asc or desc")
	}

	if r.Scheduled() {
		s := r.Schedule
		switch s.Frequency {
		case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		default:
			v.check(false, "schedule.frequency", "must be daily, weekly or monthly")
		}

		_, _, err := ParseClock(s.Time)
		v.check(err == nil, "schedule.time", "must be HH:MM")

		v.check(len(s.Recipients) > 0, "schedule.recipients", "at least one recipient is required")
		for i, rcpt := range s.Recipients {
			checkEmail(v, rcpt, fmt.Sprintf("schedule.recipients[%d]", i))
		}
	}

	return v.err()
}

func (r *ReportConfig) Touch(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.LastModified = now
}

// ParseClock parses a 24-hour "HH:MM" time of day.
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}

	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}

	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}

	return hour, minute, nil
}
