package domain

import (
	"time"

	"github.com/google/uuid"
)

// CredentialKind identifies a credential section
type CredentialKind string

const (
	CredentialW9               CredentialKind = "w9"
	CredentialNotaryCommission CredentialKind = "notary-commission"
	CredentialENotary          CredentialKind = "e-notary"
	CredentialBond             CredentialKind = "bond"
	CredentialInsurance        CredentialKind = "insurance"
	CredentialBackgroundCheck  CredentialKind = "background-check"
	CredentialTitleProducer    CredentialKind = "title-producer"
	CredentialOnline           CredentialKind = "online"
)

var credentialKinds = map[CredentialKind]struct{}{
	CredentialW9:               {},
	CredentialNotaryCommission: {},
	CredentialENotary:          {},
	CredentialBond:             {},
	CredentialInsurance:        {},
	CredentialBackgroundCheck:  {},
	CredentialTitleProducer:    {},
	CredentialOnline:           {},
}

type Document struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type SecurityQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// OnlineLogin is a signing-platform account
type OnlineLogin struct {
	Platform          string             `json:"platform"`
	URL               string             `json:"url,omitempty"`
	Username          string             `json:"username"`
	Secret            string             `json:"secret,omitempty"`
	TwoFactorPhone    string             `json:"twoFactorPhone,omitempty"`
	SecurityQuestions []SecurityQuestion `json:"securityQuestions,omitempty"`
}

// Credential is a licence, commission, policy, or platform login the agent keeps on file
type Credential struct {
	ID               uuid.UUID      `json:"id"`
	UserID           uuid.UUID      `json:"user"`
	Kind             CredentialKind `json:"kind"`
	Title            string         `json:"title,omitempty"`
	State            string         `json:"state,omitempty"`
	CommissionNumber string         `json:"commissionNumber,omitempty"`
	PolicyNumber     string         `json:"policyNumber,omitempty"`
	Company          string         `json:"company,omitempty"`
	Amount           float64        `json:"amount,omitempty"`
	URL              string         `json:"url,omitempty"`
	IssueDate        Date           `json:"issueDate"`
	ExpirationDate   Date           `json:"expirationDate"`
	Documents        []Document     `json:"documents,omitempty"`
	Login            *OnlineLogin   `json:"login,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func (c *Credential) Validate() error {
	v := newValidator()

	v.check(c.UserID != uuid.Nil, "user", "is required")
	_, ok := credentialKinds[c.Kind]
	v.check(ok, "kind", "is not a known credential kind")

	if c.Kind == CredentialOnline {
		v.check(c.Login != nil, "login", "is required for online credentials")
		if c.Login != nil {
			v.required(c.Login.Platform, "login.platform")
			v.required(c.Login.Username, "login.username")
		}
	}
	v.check(c.Amount >= 0, "amount", "must not be negative")
	if !c.IssueDate.IsZero() && !c.ExpirationDate.IsZero() {
		v.check(!c.ExpirationDate.Before(c.IssueDate.Time), "expirationDate", "must not precede issueDate")
	}

	return v.err()
}

// ExpiresWithin reports whether the credential has an expiration date in [now, now+d].
func (c *Credential) ExpiresWithin(now time.Time, d time.Duration) bool {
	if c.ExpirationDate.IsZero() {
		return false
	}

	today := NewDate(now).Time
	return !c.ExpirationDate.Before(today) && !c.ExpirationDate.After(today.Add(d))
}

func (c *Credential) Touch(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}
