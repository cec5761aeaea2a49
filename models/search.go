package models

// SearchFilters narrows §4.4 search over the materialized slot space. Any
// zero-valued field is a wildcard; Date and StartDate/EndDate are mutually
// exclusive (Date wins if both are set).
type SearchFilters struct {
	Date              string
	StartDate         string
	EndDate           string
	AppointmentType   AppointmentType
	InsuranceAccepted *bool
	MaxPrice          *float64
	Specialization    string // case-insensitive substring against Provider.Specialization
	Location          string // case-insensitive substring against Provider.ClinicAddress
	AvailableOnly     bool
	Timezone          string // caller-preferred display timezone; falls back to the template's own
}

// ProviderSearchResult groups a provider's surviving slots under its public
// summary (§4.4 step 5: "group by provider").
type ProviderSearchResult struct {
	Provider ProviderSummary  `json:"provider"`
	Slots    []SlotProjection `json:"slots"`
}
