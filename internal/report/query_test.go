package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

func queryRows() []Row {
	return []Row{
		{"id": "a", "status": "completed", "fee": 150.0, "company": "Acme Title", "orderDate": "2026-10-15"},
		{"id": "b", "status": "pending", "fee": 75.0, "company": "Beacon Escrow", "orderDate": "2026-10-20"},
		{"id": "c", "status": "completed", "fee": 200.0, "company": "acme title", "orderDate": "2026-10-02"},
		{"id": "d", "status": "cancelled", "fee": 90.0, "company": "Cedar Lending", "orderDate": "2026-09-28"},
	}
}

func ids(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r["id"].(string))
	}
	return out
}

func TestApply(t *testing.T) {
	testCases := map[string]struct {
		cfg      *domain.ReportConfig
		expected []string
		wantErr  string
	}{
		"should keep every row without filters": {
			cfg:      &domain.ReportConfig{},
			expected: []string{"a", "b", "c", "d"},
		},
		"should match equals ignoring case": {
			cfg: &domain.ReportConfig{Filters: []domain.FilterConfig{
				{Field: "company", Operator: domain.OperatorEquals, Value: "ACME TITLE"},
			}},
			expected: []string{"a", "c"},
		},
		"should match contains": {
			cfg: &domain.ReportConfig{Filters: []domain.FilterConfig{
				{Field: "company", Operator: domain.OperatorContains, Value: "escrow"},
			}},
			expected: []string{"b"},
		},
		"should compare numbers numerically": {
			cfg: &domain.ReportConfig{Filters: []domain.FilterConfig{
				{Field: "fee", Operator: domain.OperatorGreaterThan, Value: "90"},
			}},
			expected: []string{"a", "c"},
		},
		"should compare dates with lessThan": {
			cfg: &domain.ReportConfig{Filters: []domain.FilterConfig{
				{Field: "orderDate", Operator: domain.OperatorLessThan, Value: "2026-10-01"},
			}},
			expected: []string{"d"},
		},
		"should include both ends of between": {
			cfg: &domain.ReportConfig{Filters: []domain.FilterConfig{
				{Field: "orderDate", Operator: domain.OperatorBetween, Value: "2026-10-02,2026-10-15"},
			}},
			expected: []string{"a", "c"},
		},
		"should match in lists": {
			cfg: &domain.ReportConfig{Filters: []domain.FilterConfig{
				{Field: "status", Operator: domain.OperatorIn, Value: "pending, cancelled"},
			}},
			expected: []string{"b", "d"},
		},
		"should combine filters with and": {
			cfg: &domain.ReportConfig{Filters: []domain.FilterConfig{
				{Field: "status", Operator: domain.OperatorEquals, Value: "completed"},
				{Field: "fee", Operator: domain.OperatorLessThan, Value: "180"},
			}},
			expected: []string{"a"},
		},
		"should sort descending": {
			cfg: &domain.ReportConfig{SortBy: []domain.SortConfig{
				{Field: "fee", Direction: domain.SortDesc},
			}},
			expected: []string{"c", "a", "d", "b"},
		},
		"should group before sorting": {
			cfg: &domain.ReportConfig{
				GroupBy: []string{"status"},
				SortBy:  []domain.SortConfig{{Field: "orderDate", Direction: domain.SortAsc}},
			},
			expected: []string{"d", "c", "a", "b"},
		},
		"should reject a malformed between": {
			cfg: &domain.ReportConfig{Filters: []domain.FilterConfig{
				{Field: "fee", Operator: domain.OperatorBetween, Value: "10"},
			}},
			wantErr: "between filter on fee expects two values",
		},
		"should reject unknown operators": {
			cfg: &domain.ReportConfig{Filters: []domain.FilterConfig{
				{Field: "fee", Operator: "near", Value: "10"},
			}},
			wantErr: `unsupported filter operator "near"`,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			rows := queryRows()
			out, err := Apply(rows, tc.cfg)
			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, ids(out))
			assert.Equal(t, []string{"a", "b", "c", "d"}, ids(rows))
		})
	}
}
