package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTransferContentTicket(t *testing.T) {
	cases := []struct {
		content string
		number  int
	}{
		{"BARBER 7", 7},
		{"barber 7", 7},
		{"BARBER7", 7},
		{"Thanh toan BARBER  12 cam on", 12},
		{"CK BARBER 105", 105},
	}
	for _, tt := range cases {
		got := ParseTransferContent(tt.content)
		assert.Equal(t, MatchTicket, got.Kind, tt.content)
		assert.Equal(t, tt.number, got.TicketNumber, tt.content)
	}
}

func TestParseTransferContentTopUp(t *testing.T) {
	cases := []struct {
		content string
		code    string
	}{
		{"NAP123456", "NAP123456"},
		{"nap123456", "NAP123456"},
		{"chuyen khoan NapAB12CD", "NAPAB12CD"},
	}
	for _, tt := range cases {
		got := ParseTransferContent(tt.content)
		assert.Equal(t, MatchTopUp, got.Kind, tt.content)
		assert.Equal(t, tt.code, got.Code, tt.content)
	}
}

// A note matching both patterns is a ticket payment: the ticket rule has
// priority.
func TestParseTransferContentPriority(t *testing.T) {
	got := ParseTransferContent("BARBER 3 NAP999")
	assert.Equal(t, MatchTicket, got.Kind)
	assert.Equal(t, 3, got.TicketNumber)
}

func TestParseTransferContentUnrecognized(t *testing.T) {
	for _, content := range []string{"", "lunch money", "BARBER", "BARBER x", "NA P123", "thanks"} {
		got := ParseTransferContent(content)
		assert.Equal(t, MatchUnrecognized, got.Kind, content)
	}
}

func TestApplyTransfer(t *testing.T) {
	// Scenario: ticket #7 priced 150000, paid in two transfers
	paid, settled := ApplyTransfer(150000, 0, 100000)
	assert.Equal(t, int64(100000), paid)
	assert.False(t, settled)

	paid, settled = ApplyTransfer(150000, paid, 50000)
	assert.Equal(t, int64(150000), paid)
	assert.True(t, settled)
}

func TestApplyTransferOverpay(t *testing.T) {
	paid, settled := ApplyTransfer(100000, 80000, 50000)
	assert.Equal(t, int64(130000), paid) // tip recorded
	assert.True(t, settled)
}

func TestApplyTransferMonotonic(t *testing.T) {
	paid := int64(0)
	for _, amount := range []int64{10000, 0, -5000, 20000} {
		next, _ := ApplyTransfer(1000000, paid, amount)
		assert.GreaterOrEqual(t, next, paid)
		paid = next
	}
	assert.Equal(t, int64(30000), paid) // negative input contributes nothing
}
