// Package waittime computes queue wait estimates. The estimator is a pure
// function over a ticket subset and the active-barber count so it can be
// exercised without a database.
package waittime

import "github.com/hieplq/barber-queue/internal/model"

// BufferMinutes is the fixed overhead added to every estimate, covering
// cleanup and chair transition between customers.
const BufferMinutes = 5

// countsTowardLoad reports whether a ticket's services still occupy staff
// attention. PROCESSING is excluded: an unattended treatment phase ties up a
// chair but not a barber.
func countsTowardLoad(status string) bool {
	switch status {
	case model.StatusWaiting, model.StatusCalling, model.StatusServing, model.StatusFinishing:
		return true
	}
	return false
}

// Load sums the working minutes of every ticket that occupies staff
// attention.
func Load(tickets []*model.Ticket) int {
	total := 0
	for _, t := range tickets {
		if !countsTowardLoad(t.Status) {
			continue
		}
		for _, line := range t.Services {
			total += line.DurationWork
		}
	}
	return total
}

// Estimate returns the projected wait in minutes for the given tickets split
// across activeBarbers staff: ceil(load / barbers) plus the fixed buffer.
// With zero active barbers there is no meaningful estimate and ok is false;
// callers must special-case that instead of showing a bogus number.
func Estimate(tickets []*model.Ticket, activeBarbers int) (minutes int, ok bool) {
	if activeBarbers <= 0 {
		return 0, false
	}
	load := Load(tickets)
	return (load+activeBarbers-1)/activeBarbers + BufferMinutes, true
}

// Personal returns the wait estimate for the holder of ticketNumber: only
// tickets ahead of it count, and a customer already being served waits zero.
func Personal(tickets []*model.Ticket, ticketNumber int, activeBarbers int) (minutes int, ok bool) {
	for _, t := range tickets {
		if t.TicketNumber != ticketNumber {
			continue
		}
		if t.Status == model.StatusServing || t.Status == model.StatusFinishing {
			return 0, true
		}
		break
	}
	ahead := make([]*model.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.TicketNumber < ticketNumber {
			ahead = append(ahead, t)
		}
	}
	return Estimate(ahead, activeBarbers)
}

// Position returns the queue position shown on the board: the count of
// same-day tickets ahead of ticketNumber still in WAITING or CALLING.
func Position(tickets []*model.Ticket, ticketNumber int) int {
	n := 0
	for _, t := range tickets {
		if t.TicketNumber >= ticketNumber {
			continue
		}
		if t.Status == model.StatusWaiting || t.Status == model.StatusCalling {
			n++
		}
	}
	return n
}
