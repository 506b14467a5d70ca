// Package payment reconciles inbound bank-transfer notifications against
// tickets and credit top-up orders. The free-text matching rules live behind
// a single parser returning a tagged variant so they stay unit-testable
// independent of persistence.
package payment

import (
	"regexp"
	"strconv"
	"strings"
)

// Match kinds produced by ParseTransferContent.
const (
	MatchTicket       = "TICKET"
	MatchTopUp        = "TOPUP"
	MatchUnrecognized = "UNRECOGNIZED"
)

// Match is the parsed interpretation of a transfer's free-text content.
// Exactly one of TicketNumber and Code is meaningful, selected by Kind.
type Match struct {
	Kind         string
	TicketNumber int    // set when Kind == MatchTicket
	Code         string // set when Kind == MatchTopUp, normalized to uppercase
}

var (
	// ticket payments: "BARBER 7", "barber7", "Thanh toan BARBER  12"
	ticketPattern = regexp.MustCompile(`(?i)BARBER\s*(\d+)`)
	// top-up reconciliation codes: "NAP123456"
	topUpPattern = regexp.MustCompile(`(?i)NAP[A-Z0-9]+`)
)

// ParseTransferContent classifies a transfer note. The ticket pattern wins
// over the top-up pattern; content matching neither is Unrecognized, which
// callers acknowledge without treating as an error (the money arrived, it
// just maps to nothing we know).
func ParseTransferContent(content string) Match {
	if m := ticketPattern.FindStringSubmatch(content); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return Match{Kind: MatchTicket, TicketNumber: n}
		}
	}
	if m := topUpPattern.FindString(content); m != "" {
		return Match{Kind: MatchTopUp, Code: strings.ToUpper(m)}
	}
	return Match{Kind: MatchUnrecognized}
}

// ApplyTransfer folds one transfer into a ticket's payment accumulator and
// reports whether the ticket settles. The accumulator only ever grows, and
// overpayment (a tip) is kept in the recorded amount.
func ApplyTransfer(totalPrice, amountPaid, transferAmount int64) (newPaid int64, settled bool) {
	if transferAmount < 0 {
		transferAmount = 0
	}
	newPaid = amountPaid + transferAmount
	return newPaid, newPaid >= totalPrice
}
