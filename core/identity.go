package core

// Identity is the trusted representation of a caller. It is passed explicitly to every operation which needs it.
//
// The zero value is Anonymous.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// Anonymous is the identity of callers without a valid session.
var Anonymous = Identity{}

func (id Identity) IsAnonymous() bool {
	return id.UserID == ""
}

// Owns returns whether the identity owns the post. Anonymous owns nothing.
func (id Identity) Owns(p *Post) bool {
	return !id.IsAnonymous() && p != nil && p.OwnerID == id.UserID
}
