package appointment

var transitionMap = map[AppointmentStatus][]AppointmentStatus{
	StatusUpcoming: {StatusCancelled, StatusCompleted},
}

// ValidTransition reports whether an appointment may move from one status to another.
// completed and cancelled are terminal.
func ValidTransition(from, to AppointmentStatus) bool {
	for _, status := range transitionMap[from] {
		if status == to {
			return true
		}
	}
	return false
}
