package models

// Stats are the dashboard counters, computed on read
type Stats struct {
	TotalDevices     int `json:"totalDevices"`
	ActiveDiagnoses  int `json:"activeDiagnoses"`
	UpcomingBookings int `json:"upcomingBookings"`
}

// All returns every model managed by migrations, parents first
func All() []interface{} {
	return []interface{}{
		&User{},
		&Appliance{},
		&Diagnosis{},
		&Technician{},
		&Booking{},
		&Review{},
	}
}
