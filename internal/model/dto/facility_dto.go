package dto

type UpdateSettingsRequest struct {
	NumberOfCourts            *int `json:"number_of_courts"`
	MinimumReservationMinutes *int `json:"minimum_reservation_minutes"`
	AdvanceBookingDays        *int `json:"advance_booking_days"`
}

type UpsertScheduleRequest struct {
	DayOfWeek int     `json:"day_of_week" binding:"min=0,max=6"`
	IsOpen    bool    `json:"is_open"`
	OpenTime  *string `json:"open_time"`
	CloseTime *string `json:"close_time"`
}
