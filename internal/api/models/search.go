package models

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	City    string `json:"city" validate:"required,max=100"`
	Country string `json:"country,omitempty" validate:"omitempty,max=100"`
}

// SelectDayRequest is the body of PUT /v1/selection.
type SelectDayRequest struct {
	// DayIndex is a pointer so that 0 is distinguishable from a missing field.
	DayIndex *int `json:"dayIndex" validate:"required,gte=0"`
}
