package internal

import "context"

// RoleAdmin is the role granting access level Admin.
const RoleAdmin = "admin"

// User is the authenticated caller as seen by the access check and the views.
type User struct {
	ID       int64
	Username string
	Email    string
	Role     string
}

// Auth is the caller identity for one request. The zero value is anonymous.
type Auth struct {
	User *User
}

// Anonymous returns the identity of a caller without a signed-in user.
func Anonymous() Auth { return Auth{} }

// AuthFor returns the identity of the signed-in user u.
func AuthFor(u *User) Auth { return Auth{User: u} }

// Authenticated reports whether a user with a valid id is signed in.
func (a Auth) Authenticated() bool {
	return a.User != nil && a.User.ID > 0
}

// IsAdmin reports whether the signed-in user has the admin role.
func (a Auth) IsAdmin() bool {
	return a.Authenticated() && a.User.Role == RoleAdmin
}

// Level is the highest access level the caller holds.
func (a Auth) Level() AccessLevel {
	switch {
	case a.IsAdmin():
		return Admin
	case a.Authenticated():
		return Authenticated
	default:
		return Public
	}
}

// Allows reports whether the caller may run a route requiring level.
func (a Auth) Allows(level AccessLevel) bool {
	return a.Level() >= level
}

// AuthResolver loads the user attached to a session. A nil user with a nil
// error means the user no longer exists and the caller is anonymous.
type AuthResolver func(ctx context.Context, userID int64) (*User, error)
