package dto

type CreateReservationRequest struct {
	Category        string `json:"category"`
	CourtNumber     int    `json:"court_number"` // 0 表示不指定，自动分配最小编号的空闲场地
	StartTime       string `json:"start_time" binding:"required"` // RFC3339
	DurationMinutes int    `json:"duration_minutes" binding:"required"`
}

type CancelReservationRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

type AvailabilityRequest struct {
	StartTime       string `form:"start_time" binding:"required"`
	DurationMinutes int    `form:"duration_minutes" binding:"required"`
}

type AvailabilityResponse struct {
	FreeCourts []int `json:"free_courts"`
}
