package service

import "github.com/costumerent/costume-market/internal/model"

// CanMutate reports whether p may modify a resource owned by ownerID.  Only
// an authenticated owner may; there are no administrative overrides.
func CanMutate(p model.Principal, ownerID uint64) bool {
	return p.UserID != 0 && p.UserID == ownerID
}

func authorize(p model.Principal, ownerID uint64) error {
	if !CanMutate(p, ownerID) {
		return ErrForbidden
	}
	return nil
}
