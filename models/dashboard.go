package models

type DashboardData struct {
	TotalCars         int64     `json:"totalCars"`
	TotalBookings     int       `json:"totalBookings"`
	PendingBookings   int       `json:"pendingBookings"`
	CompletedBookings int       `json:"completedBookings"`
	RecentBookings    []Booking `json:"recentBooking"`
	MonthlyRevenue    float64   `json:"monthlyRevenue"`
}
