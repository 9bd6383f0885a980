package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

// Apply filters rows by the configured filters and orders them by groupBy
// fields followed by sortBy fields. The input slice is not modified.
func Apply(rows []Row, cfg *domain.ReportConfig) ([]Row, error) {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		ok, err := matchesAll(row, cfg.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}

	keys := make([]domain.SortConfig, 0, len(cfg.GroupBy)+len(cfg.SortBy))
	for _, g := range cfg.GroupBy {
		keys = append(keys, domain.SortConfig{Field: g, Direction: domain.SortAsc})
	}
	keys = append(keys, cfg.SortBy...)

	if len(keys) > 0 {
		slices.SortStableFunc(out, func(a, b Row) int {
			for _, k := range keys {
				c := compareValues(a[k.Field], b[k.Field])
				if k.Direction == domain.SortDesc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	return out, nil
}

func matchesAll(row Row, filters []domain.FilterConfig) (bool, error) {
	for _, f := range filters {
		ok, err := matches(row, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matches(row Row, f domain.FilterConfig) (bool, error) {
	value := FormatValue(row[f.Field])

	switch f.Operator {
	case domain.OperatorEquals:
		return compareText(value, f.Value) == 0, nil
	case domain.OperatorContains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(strings.TrimSpace(f.Value))), nil
	case domain.OperatorGreaterThan:
		return compareText(value, f.Value) > 0, nil
	case domain.OperatorLessThan:
		return compareText(value, f.Value) < 0, nil
	case domain.OperatorBetween:
		low, high, ok := strings.Cut(f.Value, ",")
		if !ok {
			return false, fmt.Errorf("between filter on %s expects two values", f.Field)
		}
		return compareText(value, low) >= 0 && compareText(value, high) <= 0, nil
	case domain.OperatorIn:
		for _, candidate := range strings.Split(f.Value, ",") {
			if compareText(value, candidate) == 0 {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("unsupported filter operator %q", f.Operator)
	}
}
