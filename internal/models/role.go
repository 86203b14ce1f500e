package models

import "fmt"

// Role is the closed set of permission levels an account can hold.
// Always compare through the helpers below rather than raw strings.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAuthor Role = "author"
	RoleUser   Role = "user"
)

// ParseRole validates a raw role token (form input, session value).
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAuthor || r == RoleUser
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// CanPublish reports whether the role may create articles.
func (r Role) CanPublish() bool {
	return r == RoleAdmin || r == RoleAuthor
}

func (r Role) String() string {
	return string(r)
}
