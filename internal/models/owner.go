package models

import "fmt"

type ownerKind int

const (
	ownerAnonymous ownerKind = iota
	ownerUser
	ownerAny
)

// OwnerScope selects which analyses a caller may see. The zero value is the
// anonymous scope: only records without a user.
type OwnerScope struct {
	kind   ownerKind
	userID uint
}

// AnonymousOwner matches records created without a user.
func AnonymousOwner() OwnerScope { return OwnerScope{kind: ownerAnonymous} }

// AnyOwner matches every record. Only internal jobs such as reindexing use it.
func AnyOwner() OwnerScope { return OwnerScope{kind: ownerAny} }

// UserOwner matches records owned by id.
func UserOwner(id uint) OwnerScope { return OwnerScope{kind: ownerUser, userID: id} }

func (s OwnerScope) IsAny() bool       { return s.kind == ownerAny }
func (s OwnerScope) IsAnonymous() bool { return s.kind == ownerAnonymous }

// User returns the owning user id for a user scope.
func (s OwnerScope) User() (uint, bool) {
	return s.userID, s.kind == ownerUser
}

// UserID is the value stored on records created under this scope.
func (s OwnerScope) UserID() *uint {
	if s.kind != ownerUser {
		return nil
	}
	id := s.userID
	return &id
}

func (s OwnerScope) Matches(userID *uint) bool {
	switch s.kind {
	case ownerAny:
		return true
	case ownerUser:
		return userID != nil && *userID == s.userID
	default:
		return userID == nil
	}
}

func (s OwnerScope) String() string {
	switch s.kind {
	case ownerAny:
		return "any"
	case ownerUser:
		return fmt.Sprintf("user:%d", s.userID)
	default:
		return "anonymous"
	}
}
