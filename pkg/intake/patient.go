// Package intake receives form submissions: values are canonicalized into
// patient attributes, patients are resolved and merged, and captured
// signatures are extracted for later document sealing.
package intake

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient holds the canonical attributes the engine understands plus a
// lossless bag for everything a practice adds on top.
type Patient struct {
	ID uuid.UUID `json:"id"`

	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	BirthDate time.Time `json:"birthDate"`
	Gender    string    `json:"gender,omitempty"`

	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	Street     string `json:"street,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`

	InsuranceProvider string `json:"insuranceProvider,omitempty"`
	InsuranceNumber   string `json:"insuranceNumber,omitempty"`

	Allergies   string `json:"allergies,omitempty"`
	Medications string `json:"medications,omitempty"`
	Conditions  string `json:"conditions,omitempty"`

	PrivacyConsent bool `json:"privacyConsent"`

	// Custom keeps submitted fields that map to no canonical attribute.
	Custom map[string]any `json:"custom,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName joins first and last name for display.
func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Merge copies incoming values over the patient. Canonical attributes follow
// latest-submission-wins: a non-blank incoming value overwrites, a blank one
// leaves the stored value alone. Custom entries are unioned, incoming keys
// winning.
func (p *Patient) Merge(in Patient) {
	overwrite := func(dst *string, src string) {
		if strings.TrimSpace(src) != "" {
			*dst = src
		}
	}
	overwrite(&p.FirstName, in.FirstName)
	overwrite(&p.LastName, in.LastName)
	overwrite(&p.Gender, in.Gender)
	overwrite(&p.Email, in.Email)
	overwrite(&p.Phone, in.Phone)
	overwrite(&p.Street, in.Street)
	overwrite(&p.PostalCode, in.PostalCode)
	overwrite(&p.City, in.City)
	overwrite(&p.Country, in.Country)
	overwrite(&p.InsuranceProvider, in.InsuranceProvider)
	overwrite(&p.InsuranceNumber, in.InsuranceNumber)
	overwrite(&p.Allergies, in.Allergies)
	overwrite(&p.Medications, in.Medications)
	overwrite(&p.Conditions, in.Conditions)

	if !in.BirthDate.IsZero() {
		p.BirthDate = in.BirthDate
	}
	if in.PrivacyConsent {
		p.PrivacyConsent = true
	}

	if len(in.Custom) > 0 {
		if p.Custom == nil {
			p.Custom = make(map[string]any, len(in.Custom))
		}
		for key, value := range in.Custom {
			p.Custom[key] = value
		}
	}
}
