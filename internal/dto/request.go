package dto

// ListErrorsRequest represents GET /api/dashboard/errors query parameters
type ListErrorsRequest struct {
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100" example:"20"`
	Offset   int    `form:"offset" binding:"omitempty,min=0" example:"0"`
	Level    string `form:"level" binding:"omitempty,oneof=error warning info debug" example:"error"`
	Source   string `form:"source" example:"checkout-api"`
	Resolved *bool  `form:"resolved" example:"false"`
}

// TrendsRequest represents GET /api/dashboard/analytics/trends query parameters
type TrendsRequest struct {
	Period  string `form:"period" binding:"omitempty,oneof=24h 7d 30d" example:"7d"`
	GroupBy string `form:"group_by" binding:"omitempty,oneof=hour day" example:"day"`
}

// ReportRequest represents GET /api/dashboard/reports query parameters
type ReportRequest struct {
	From    int64  `form:"from" binding:"required" example:"1723475612"`
	To      int64  `form:"to" binding:"required" example:"1723562012"`
	GroupBy string `form:"group_by" example:"level"`
	Level   string `form:"level" binding:"omitempty,oneof=error warning info debug" example:"error"`
}

// StreamAction is a websocket control message
type StreamAction struct {
	Action string `json:"action" example:"ack"`
}
