package model

// ShopSetting is the singleton settings row: opening hours, the daily ticket
// cap, the open/closed switch and the bank details shown next to payment QR
// codes. Version is a monotonic counter bumped on every admin write; readers
// compare it against their cached copy so a stale cache can never outlive an
// update (the settings accessor in internal/settings owns that protocol).
type ShopSetting struct {
	ID              uint64 `json:"id"`                // shop_settings.id (always 1)
	OpenMorning     string `json:"open_morning"`      // "08:00"
	CloseMorning    string `json:"close_morning"`     // "12:00"
	OpenAfternoon   string `json:"open_afternoon"`    // "13:30"
	CloseAfternoon  string `json:"close_afternoon"`   // "20:00"
	MaxDailyTickets int    `json:"max_daily_tickets"` // 0 disables the cap
	IsShopOpen      bool   `json:"is_shop_open"`      // master switch checked on ticket creation
	BankName        string `json:"bank_name"`         // display fields for the payment QR
	BankAccountNo   string `json:"bank_account_no"`
	BankAccountName string `json:"bank_account_name"`
	Version         uint64 `json:"-"` // shop_settings.version
}
