package model

import "fmt"

// OwnerKind discriminates the two ownership axes of a cart or order.
type OwnerKind int

const (
	// OwnerUser marks ownership by an authenticated user.
	OwnerUser OwnerKind = iota + 1
	// OwnerSession marks ownership by an anonymous session.
	OwnerSession
)

// Owner is a tagged union: a cart or order is owned by exactly one of an
// authenticated user id or an anonymous session id. Using a union instead of
// two nullable fields makes both-set and both-null states unrepresentable.
type Owner struct {
	kind      OwnerKind
	userID    int64
	sessionID string
}

// UserOwner returns an Owner for an authenticated user.
func UserOwner(userID int64) Owner {
	return Owner{kind: OwnerUser, userID: userID}
}

// SessionOwner returns an Owner for an anonymous session.
func SessionOwner(sessionID string) Owner {
	return Owner{kind: OwnerSession, sessionID: sessionID}
}

// Kind returns the ownership axis. Zero for an uninitialised Owner.
func (o Owner) Kind() OwnerKind {
	return o.kind
}

// UserID returns the user id and true when owned by a user.
func (o Owner) UserID() (int64, bool) {
	return o.userID, o.kind == OwnerUser
}

// SessionID returns the session id and true when owned by a session.
func (o Owner) SessionID() (string, bool) {
	return o.sessionID, o.kind == OwnerSession
}

// Columns splits the owner into the nullable (user_id, session_id) pair used
// by the persistence layer.
func (o Owner) Columns() (userID *int64, sessionID *string) {
	switch o.kind {
	case OwnerUser:
		id := o.userID
		return &id, nil
	case OwnerSession:
		sid := o.sessionID
		return nil, &sid
	}
	return nil, nil
}

// OwnerFromColumns rebuilds an Owner from the nullable column pair. Exactly
// one of the two must be set.
func OwnerFromColumns(userID *int64, sessionID *string) (Owner, error) {
	switch {
	case userID != nil && sessionID == nil:
		return UserOwner(*userID), nil
	case userID == nil && sessionID != nil:
		return SessionOwner(*sessionID), nil
	case userID != nil && sessionID != nil:
		return Owner{}, fmt.Errorf("owner has both user_id and session_id set")
	}
	return Owner{}, fmt.Errorf("owner has neither user_id nor session_id set")
}

func (o Owner) String() string {
	switch o.kind {
	case OwnerUser:
		return fmt.Sprintf("user:%d", o.userID)
	case OwnerSession:
		return "session:" + o.sessionID
	}
	return "none"
}
