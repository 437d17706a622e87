package appointment

import (
	"time"

	"github.com/google/uuid"
)

// DemoAppointments mirrors the sample data the mobile app shipped with:
// one upcoming booking and one completed visit, dated relative to now.
func DemoAppointments(now time.Time) []Appointment {
	return []Appointment{
		{
			ID:              uuid.NewString(),
			BarberID:        "1",
			BarberName:      "Marcus Johnson",
			ServiceID:       "1",
			ServiceName:     "Classic Haircut",
			Date:            now.AddDate(0, 0, 3).Format(DateLayout),
			Time:            "10:00 AM",
			DurationMinutes: 30,
			Status:          StatusUpcoming,
			Price:           25,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:              uuid.NewString(),
			BarberID:        "2",
			BarberName:      "David Chen",
			ServiceID:       "5",
			ServiceName:     "Haircut & Beard Combo",
			Date:            now.AddDate(0, 0, -26).Format(DateLayout),
			Time:            "2:00 PM",
			DurationMinutes: 60,
			Status:          StatusCompleted,
			Price:           45,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}
}
