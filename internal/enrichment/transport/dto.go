// Package transport defines the wire shapes of the enrichment gateway.
package transport

import "time"

// ResultKind says whether a normalized record describes a person or an
// organization.
type ResultKind string

const (
	KindPerson       ResultKind = "person"
	KindOrganization ResultKind = "organization"
)

// SearchRequest identifies a person or organization to look up.
// At least one of the lookup keys must be set.
type SearchRequest struct {
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Company   string `json:"company,omitempty"`
	Domain    string `json:"domain,omitempty" validate:"omitempty,fqdn"`
	SocialURL string `json:"socialUrl,omitempty" validate:"omitempty,url"`
}

// HasLookupKey reports whether the request carries something searchable.
func (r SearchRequest) HasLookupKey() bool {
	return r.Email != "" ||
		(r.FirstName != "" && r.LastName != "") ||
		r.Company != "" ||
		r.Domain != "" ||
		r.SocialURL != ""
}

// EnrichmentResult is the normalized snapshot of one provider record.
// Every field is always present; absent provider data maps to the zero
// value, never to a missing key.
type EnrichmentResult struct {
	Kind      ResultKind `json:"kind"`
	FullName  string     `json:"fullName"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Title     string     `json:"title"`
	Location  string     `json:"location"`

	LinkedInURL string `json:"linkedinUrl"`
	TwitterURL  string `json:"twitterUrl"`
	WebsiteURL  string `json:"websiteUrl"`
	PhotoURL    string `json:"photoUrl"`

	OrganizationName   string `json:"organizationName"`
	OrganizationDomain string `json:"organizationDomain"`
	Industry           string `json:"industry"`
	EmployeeCount      int    `json:"employeeCount"`

	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	EnrichedAt time.Time `json:"enrichedAt"`
}
