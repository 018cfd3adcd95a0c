package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"limit must be between 1 and 100"`
}

// HealthResponse represents the dashboard's own health
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Tracker string `json:"tracker" example:"ok"`
	Archive string `json:"archive,omitempty" example:"ok"`
}

// ResolveResponse represents a successful resolve
type ResolveResponse struct {
	ID     string `json:"id" example:"err_42"`
	Status string `json:"status" example:"resolved"`
}

// ReportGroupData represents archived observations for a specific group
type ReportGroupData struct {
	GroupValue   string `json:"group_value" example:"error"`
	Observations uint64 `json:"observations" example:"120"`
	Occurrences  uint64 `json:"occurrences" example:"2300"`
}

// ReportResponse represents the report query response
type ReportResponse struct {
	From              int64             `json:"from" example:"1723475612"`
	To                int64             `json:"to" example:"1723562012"`
	Level             string            `json:"level,omitempty" example:"error"`
	TotalObservations uint64            `json:"total_observations" example:"500"`
	UniqueRecords     uint64            `json:"unique_records" example:"42"`
	TotalOccurrences  uint64            `json:"total_occurrences" example:"9000"`
	GroupBy           string            `json:"group_by,omitempty" example:"level"`
	Groups            []ReportGroupData `json:"groups,omitempty"`
}
