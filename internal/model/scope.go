package model

// Scope restricts which expense rows an operation may touch.
// A zero Scope matches nothing.
type Scope struct {
	OwnerID      string
	Unrestricted bool
}

// OwnerScope limits rows to those owned by userID.
func OwnerScope(userID string) Scope {
	return Scope{OwnerID: userID}
}

// AllScope matches every row.
func AllScope() Scope {
	return Scope{Unrestricted: true}
}

// Allows reports whether a row owned by ownerID falls inside the scope.
func (s Scope) Allows(ownerID string) bool {
	if s.Unrestricted {
		return true
	}
	return s.OwnerID != "" && s.OwnerID == ownerID
}
