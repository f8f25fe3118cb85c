package app

import "hotel_booking/internal/domain"

// requirePrincipal rejects anonymous callers before any store access.
func requirePrincipal(p domain.Principal) error {
	if p.Anonymous() {
		return domain.ErrUnauthorized
	}
	return nil
}
