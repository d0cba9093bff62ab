package models

// DrugSuggestion is one reshaped drug-label search result.
type DrugSuggestion struct {
	Name        string `json:"name"`
	GenericName string `json:"genericName,omitempty"`
	DosageForm  string `json:"dosageForm,omitempty"`
	Route       string `json:"route,omitempty"`
}

// DrugSearchResponse is returned by the drug lookup endpoint.
type DrugSearchResponse struct {
	Success     bool             `json:"success"`
	Suggestions []DrugSuggestion `json:"suggestions"`
}
