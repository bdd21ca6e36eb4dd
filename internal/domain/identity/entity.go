package identity

// UserIdentity is the singleton device profile. It is created once on
// first run from configured defaults and never mutated afterwards.
type UserIdentity struct {
	UserID   string
	UserName string
}
