package domain

// Identity is the caller identity resolved once per request by the access
// guard and passed down to handlers. Role checks read these capabilities
// instead of re-deriving them from raw user fields.
type Identity struct {
	UserID   int64
	Email    string
	Admin    bool
	Approved bool
}

// CanActOn reports whether the caller may touch a resource owned by ownerID
// under owner-or-admin rules.
func (i Identity) CanActOn(ownerID int64) bool {
	return i.Admin || i.UserID == ownerID
}

// IsSelf reports whether the caller is exactly the target user. Used for
// self-only endpoints where even admins may not act on another account.
func (i Identity) IsSelf(targetID int64) bool {
	return i.UserID == targetID
}
