package model

// ExtractedDetails holds the auxiliary fields pulled out of free text.
// Every field is optional; nil means it was not found in the text.
// Dates are ISO formatted (YYYY-MM-DD).
type ExtractedDetails struct {
	Name       *string  `json:"name,omitempty"`
	ObjectText *string  `json:"object_text,omitempty"`
	EntityName *string  `json:"entity_name,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
	StartDate  *string  `json:"start_date,omitempty"`
	EndDate    *string  `json:"end_date,omitempty"`
}

// Empty reports whether no field was extracted.
func (d ExtractedDetails) Empty() bool {
	return d.Name == nil && d.ObjectText == nil && d.EntityName == nil &&
		d.Amount == nil && d.StartDate == nil && d.EndDate == nil
}
