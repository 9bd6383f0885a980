package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestClient_DisplayName(t *testing.T) {
	testCases := map[string]struct {
		client Client
		want   string
	}{
		"should prefer the company name": {
			client: Client{CompanyName: "Acme Escrow", FullName: FullName{First: "Jo", Last: "Smith"}},
			want:   "Acme Escrow",
		},
		"should fall back to first and last name": {
			client: Client{FullName: FullName{First: "Jo", Last: "Smith"}},
			want:   "Jo Smith",
		},
		"should use the first name alone": {
			client: Client{FullName: FullName{First: "Jo"}},
			want:   "Jo",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.client.DisplayName())
		})
	}
}

func TestClient_Validate(t *testing.T) {
	owner := uuid.New()

	testCases := map[string]struct {
		client     Client
		wantFields []string
	}{
		"should accept a custom vendor type": {
			client: Client{UserID: owner, CompanyName: "Acme", VendorType: "Attorney"},
		},
		"should require a name": {
			client:     Client{UserID: owner},
			wantFields: []string{"companyName"},
		},
		"should require an owner": {
			client:     Client{CompanyName: "Acme"},
			wantFields: []string{"user"},
		},
		"should validate both email addresses": {
			client: Client{
				UserID:      owner,
				CompanyName: "Acme",
				ContactInfo: ContactInfo{MainEmail: "bad", CCEmail: "also bad"},
			},
			wantFields: []string{"contactInfo.mainEmail", "contactInfo.ccEmail"},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := tc.client.Validate()
			if len(tc.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var validationErr *ValidationError
			if assert.ErrorAs(t, err, &validationErr) {
				for _, f := range tc.wantFields {
					assert.Contains(t, validationErr.Fields, f)
				}
			}
		})
	}
}
