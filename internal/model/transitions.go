package model

// transitionMap lists the statuses reachable from each status. CANCELLED and
// SKIPPED appear under every non-terminal status; PAID is reachable from any
// active status because a bank transfer can settle a ticket at any point
// after creation.
var transitionMap = map[string][]string{
	StatusWaiting:    {StatusCalling, StatusServing, StatusPaid, StatusCancelled, StatusSkipped},
	StatusCalling:    {StatusServing, StatusPaid, StatusCancelled, StatusSkipped},
	StatusServing:    {StatusProcessing, StatusFinishing, StatusCompleted, StatusPaid, StatusCancelled, StatusSkipped},
	StatusProcessing: {StatusServing, StatusFinishing, StatusCompleted, StatusPaid, StatusCancelled, StatusSkipped},
	StatusFinishing:  {StatusCompleted, StatusPaid, StatusCancelled, StatusSkipped},
	StatusCompleted:  {StatusPaid},
	StatusPaid:       {},
	StatusCancelled:  {},
	StatusSkipped:    {},
}

// ValidTransition reports whether a ticket may move from one status to
// another. Unknown statuses are never valid.
func ValidTransition(from, to string) bool {
	for _, s := range transitionMap[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status admits no further transitions.
func Terminal(status string) bool {
	next, ok := transitionMap[status]
	return ok && len(next) == 0
}

// FreesBarber reports whether entering the status can release the ticket's
// attached barber. Whether the barber is actually released depends on the
// status being left: see OccupiesBarber.
func FreesBarber(status string) bool {
	switch status {
	case StatusProcessing, StatusCompleted, StatusPaid, StatusCancelled, StatusSkipped:
		return true
	}
	return false
}

// OccupiesBarber reports whether a ticket in this status holds its attached
// barber busy. The attachment outlives the occupation: barber_id stays on a
// COMPLETED or PROCESSING ticket while the barber serves someone else, so
// the busy flag may only be cleared when the ticket leaves one of these two
// statuses. Clearing it on any other transition would free a barber who is
// busy with a different ticket.
func OccupiesBarber(status string) bool {
	return status == StatusServing || status == StatusFinishing
}
