package model

// Principal is the authenticated identity making a request.  Handlers build
// it from the verified access token and pass it explicitly to services.
type Principal struct {
	UserID uint64
}

// Authenticated reports whether the principal carries a user id.
func (p Principal) Authenticated() bool { return p.UserID != 0 }
