package models

// Medication is a client-held medication record. The backend never stores
// these; they travel with each analysis request.
type Medication struct {
	Name      string   `json:"name"`
	Dosage    string   `json:"dosage"`
	Frequency string   `json:"frequency"`
	Times     []string `json:"times"`
	Notes     string   `json:"notes,omitempty"`
}
