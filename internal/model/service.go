package model

// Service is one offered service from the catalog: a price, an optional
// discount price and the hands-on working duration used by the wait-time
// estimator. IsPrimary marks the shop's designated primary service; settling
// a ticket that includes it grants the owner one loyalty credit.
type Service struct {
	ID            uint64 `json:"id"`                       // services.id
	Name          string `json:"name"`                     // services.name
	Price         int64  `json:"price"`                    // services.price
	DiscountPrice *int64 `json:"discount_price,omitempty"` // services.discount_price (nullable)
	DurationWork  int    `json:"duration_work_min"`        // services.duration_work_min
	IsPrimary     bool   `json:"is_primary"`               // services.is_primary
	Active        bool   `json:"active"`                   // services.active
}

// EffectivePrice returns the chargeable price of the service: the discount
// price when one is set and lower than the list price, otherwise the list
// price. Every price snapshot and every display of a service's price goes
// through this function so the two can never disagree.
func (s *Service) EffectivePrice() int64 {
	if s.DiscountPrice != nil && *s.DiscountPrice < s.Price {
		return *s.DiscountPrice
	}
	return s.Price
}
