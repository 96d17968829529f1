package models

// Role is the access level of a user. Only two exist today.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
}

// Role maps the stored admin flag onto the role enum.
func (u *User) Role() Role {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}
