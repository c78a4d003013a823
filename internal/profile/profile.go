// Package profile builds canonical company profiles from raw store records.
package profile

import "github.com/regwatchhq/regwatch/internal/store"

// CompanyProfile is the normalized, request-scoped summary of a company.
// It drives both regulator suggestion and relevance classification and is
// never mutated after construction.
type CompanyProfile struct {
	Name                string
	Industry            string
	BusinessCategory    string
	BusinessSubCategory string
	Services            []string
	Description         string
	Country             string
	SuggestedRegulators []string
}

// Build normalizes a raw company document. Every field defaults to its zero
// value when absent; Country falls back to fallbackCountry when the nested
// country.name field is missing. Build is total over arbitrary partial
// input.
func Build(doc store.Document, fallbackCountry string) CompanyProfile {
	country := doc.Nested("country").String("name")
	if country == "" {
		country = fallbackCountry
	}

	name := doc.String("name")
	if name == "" {
		name = "Unknown Company"
	}

	return CompanyProfile{
		Name:                name,
		Industry:            doc.String("industry"),
		BusinessCategory:    doc.String("businessCategory"),
		BusinessSubCategory: doc.String("businessSubCategory"),
		Services:            doc.StringSlice("services"),
		Description:         doc.String("description"),
		Country:             country,
	}
}

// WithRegulators returns a copy of the profile carrying the suggested
// regulator codes.
func (p CompanyProfile) WithRegulators(codes []string) CompanyProfile {
	p.SuggestedRegulators = codes
	return p
}
