package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hieplq/barber-queue/internal/model"
)

// SettingRepo provides access to the singleton shop settings row. Every admin
// write bumps the version column; the read-through cache in internal/settings
// compares versions instead of guessing at TTLs.
type SettingRepo struct {
	db *sql.DB
}

// NewSettingRepo returns a new SettingRepo bound to the given database.
func NewSettingRepo(db *sql.DB) *SettingRepo { return &SettingRepo{db: db} }

const settingColumns = `id, open_morning, close_morning, open_afternoon, close_afternoon,
	max_daily_tickets, is_shop_open, bank_name, bank_account_no, bank_account_name, version`

// Get loads the settings row. Returns ErrSettingNotFound when the row was
// never seeded.
func (r *SettingRepo) Get(ctx context.Context) (*model.ShopSetting, error) {
	q := `SELECT ` + settingColumns + ` FROM shop_settings WHERE id = 1`
	var s model.ShopSetting
	err := r.db.QueryRowContext(ctx, q).Scan(
		&s.ID, &s.OpenMorning, &s.CloseMorning, &s.OpenAfternoon, &s.CloseAfternoon,
		&s.MaxDailyTickets, &s.IsShopOpen, &s.BankName, &s.BankAccountNo, &s.BankAccountName, &s.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Version returns only the settings version counter. This is the cheap check
// the cache performs on every read.
func (r *SettingRepo) Version(ctx context.Context) (uint64, error) {
	const q = `SELECT version FROM shop_settings WHERE id = 1`
	var v uint64
	err := r.db.QueryRowContext(ctx, q).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSettingNotFound
	}
	return v, err
}

// Update overwrites the settings row and bumps the version counter in the
// same statement, so there is no window in which new values carry the old
// version.
func (r *SettingRepo) Update(ctx context.Context, s *model.ShopSetting) error {
	const q = `UPDATE shop_settings SET
		open_morning = ?, close_morning = ?, open_afternoon = ?, close_afternoon = ?,
		max_daily_tickets = ?, is_shop_open = ?, bank_name = ?, bank_account_no = ?, bank_account_name = ?,
		version = version + 1
		WHERE id = 1`
	res, err := r.db.ExecContext(ctx, q,
		s.OpenMorning, s.CloseMorning, s.OpenAfternoon, s.CloseAfternoon,
		s.MaxDailyTickets, s.IsShopOpen, s.BankName, s.BankAccountNo, s.BankAccountName,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSettingNotFound
	}
	return nil
}
