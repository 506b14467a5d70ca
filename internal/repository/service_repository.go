package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hieplq/barber-queue/internal/model"
)

// ServiceRepo provides read access to the service catalog. The catalog is
// administered elsewhere; the queue core only reads prices and durations.
type ServiceRepo struct {
	db *sql.DB
}

// NewServiceRepo returns a new ServiceRepo bound to the given database.
func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

func scanService(row interface{ Scan(...any) error }) (*model.Service, error) {
	var s model.Service
	var discount sql.NullInt64
	if err := row.Scan(&s.ID, &s.Name, &s.Price, &discount, &s.DurationWork, &s.IsPrimary, &s.Active); err != nil {
		return nil, err
	}
	if discount.Valid {
		v := discount.Int64
		s.DiscountPrice = &v
	}
	return &s, nil
}

// GetActiveByIDs loads the active services matching the given ids. Callers
// compare the result length against the request to detect unknown or
// inactive selections.
func (r *ServiceRepo) GetActiveByIDs(ctx context.Context, ids []uint64) ([]*model.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ids))
	placeholders := make([]string, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		placeholders = append(placeholders, "?")
	}
	q := `SELECT id, name, price, discount_price, duration_work_min, is_primary, active
		FROM services
		WHERE active = 1 AND id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var services []*model.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// HasPrimaryTx reports whether any of the ticket's service lines is the
// shop's designated primary service, inside the caller's transaction. Used
// by payment settlement to decide whether a loyalty credit is due.
func (r *ServiceRepo) HasPrimaryTx(ctx context.Context, tx *sql.Tx, ticketID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM ticket_services ts
		JOIN services s ON s.id = ts.service_id
		WHERE ts.ticket_id = ? AND s.is_primary = 1`
	var n int
	if err := tx.QueryRowContext(ctx, q, ticketID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListActive returns the purchasable catalog ordered by name.
func (r *ServiceRepo) ListActive(ctx context.Context) ([]*model.Service, error) {
	const q = `SELECT id, name, price, discount_price, duration_work_min, is_primary, active
		FROM services WHERE active = 1 ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	services := make([]*model.Service, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
