package domain

import (
	"time"

	"github.com/google/uuid"
)

// Default vendor types offered by the client form. Any other non-empty value is accepted as a custom type.
const (
	VendorTypeTitleCompany   = "Title Company"
	VendorTypeSigningService = "Signing Service"
	VendorTypeLender         = "Lender"
	VendorTypeNotaryPublic   = "Notary Public"
)

type FullName struct {
	Prefix string `json:"prefix,omitempty"`
	First  string `json:"first,omitempty"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last,omitempty"`
}

type ContactInfo struct {
	MainPhone string `json:"mainPhone,omitempty"`
	WorkPhone string `json:"workPhone,omitempty"`
	Mobile    string `json:"mobile,omitempty"`
	Fax       string `json:"fax,omitempty"`
	MainEmail string `json:"mainEmail,omitempty"`
	CCEmail   string `json:"ccEmail,omitempty"`
	Website   string `json:"website,omitempty"`
	URL1      string `json:"url1,omitempty"`
}

type ClientAddresses struct {
	BilledFrom  string `json:"billedFrom,omitempty"`
	ShippedFrom string `json:"shippedFrom,omitempty"`
}

type PaymentSettings struct {
	AccountNo        string `json:"accountNo,omitempty"`
	CreditLimit      string `json:"creditLimit,omitempty"`
	PaymentTerms     string `json:"paymentTerms,omitempty"`
	BillingRateLevel string `json:"billingRateLevel,omitempty"`
	PrintNameOnCheck string `json:"printNameOnCheck,omitempty"`
}

// Client is a company or person that sends signing work to the agent
type Client struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"user"`
	CompanyName     string            `json:"companyName,omitempty"`
	FullName        FullName          `json:"fullName"`
	JobTitle        string            `json:"jobTitle,omitempty"`
	ContactInfo     ContactInfo       `json:"contactInfo"`
	Addresses       ClientAddresses   `json:"addresses"`
	PaymentSettings PaymentSettings   `json:"paymentSettings"`
	VendorType      string            `json:"vendorType,omitempty"`
	CustomFields    map[string]string `json:"customFields,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// DisplayName prefers the company name and falls back to the person's name.
func (c *Client) DisplayName() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}

	name := c.FullName.First
	if c.FullName.Last != "" {
		name += " " + c.FullName.Last
	}
	return name
}

func (c *Client) Validate() error {
	v := newValidator()

	v.check(c.UserID != uuid.Nil, "user", "is required")
	v.check(c.CompanyName != "" || c.FullName.First != "", "companyName", "company name or first name is required")
	checkEmail(v, c.ContactInfo.MainEmail, "contactInfo.mainEmail")
	checkEmail(v, c.ContactInfo.CCEmail, "contactInfo.ccEmail")

	return v.err()
}

func (c *Client) Touch(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}
