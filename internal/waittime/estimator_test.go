package waittime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hieplq/barber-queue/internal/model"
)

func ticket(number int, status string, durations ...int) *model.Ticket {
	t := &model.Ticket{TicketNumber: number, Status: status}
	for i, d := range durations {
		t.Services = append(t.Services, model.ServiceLine{ServiceID: uint64(i + 1), DurationWork: d})
	}
	return t
}

func TestEstimate(t *testing.T) {
	tickets := []*model.Ticket{
		ticket(1, model.StatusServing, 30),
		ticket(2, model.StatusWaiting, 20, 10),
		ticket(3, model.StatusProcessing, 45), // unattended, excluded from load
		ticket(4, model.StatusCalling, 15),
	}
	// load = 30+30+15 = 75
	min, ok := Estimate(tickets, 2)
	assert.True(t, ok)
	assert.Equal(t, 38+BufferMinutes, min) // ceil(75/2) = 38

	min, ok = Estimate(tickets, 1)
	assert.True(t, ok)
	assert.Equal(t, 75+BufferMinutes, min)
}

func TestEstimateNoBarbers(t *testing.T) {
	_, ok := Estimate([]*model.Ticket{ticket(1, model.StatusWaiting, 30)}, 0)
	assert.False(t, ok)
	_, ok = Estimate(nil, -1)
	assert.False(t, ok)
}

func TestEstimateEmptyQueue(t *testing.T) {
	min, ok := Estimate(nil, 3)
	assert.True(t, ok)
	assert.Equal(t, BufferMinutes, min)
}

// The estimate must scale inversely with staffing: more barbers never means a
// longer wait for the same load.
func TestEstimateInverseScaling(t *testing.T) {
	tickets := []*model.Ticket{
		ticket(1, model.StatusWaiting, 40),
		ticket(2, model.StatusWaiting, 25),
		ticket(3, model.StatusServing, 35),
	}
	for n := 1; n <= 8; n++ {
		small, ok := Estimate(tickets, n)
		assert.True(t, ok)
		large, ok := Estimate(tickets, 2*n)
		assert.True(t, ok)
		assert.GreaterOrEqual(t, small, large, "n=%d", n)
		assert.GreaterOrEqual(t, large, 0)
	}
}

func TestPersonal(t *testing.T) {
	tickets := []*model.Ticket{
		ticket(1, model.StatusServing, 30),
		ticket(2, model.StatusWaiting, 20),
		ticket(3, model.StatusWaiting, 25),
	}
	// holder of #3 waits on #1 and #2: load 50, one barber
	min, ok := Personal(tickets, 3, 1)
	assert.True(t, ok)
	assert.Equal(t, 50+BufferMinutes, min)

	// a customer already in the chair waits zero
	min, ok = Personal(tickets, 1, 1)
	assert.True(t, ok)
	assert.Equal(t, 0, min)

	// zero barbers still means no estimate
	_, ok = Personal(tickets, 3, 0)
	assert.False(t, ok)
}

func TestPosition(t *testing.T) {
	tickets := []*model.Ticket{
		ticket(1, model.StatusServing),
		ticket(2, model.StatusWaiting),
		ticket(3, model.StatusCalling),
		ticket(5, model.StatusProcessing),
		ticket(6, model.StatusWaiting),
	}
	assert.Equal(t, 0, Position(tickets, 2))
	assert.Equal(t, 1, Position(tickets, 3))
	assert.Equal(t, 2, Position(tickets, 6)) // #2 and #3; #1 serving and #5 processing don't count
}
