package domain

// User is an API account. PasswordHash is a bcrypt hash and never leaves
// the service; Role carries the joined role name on reads.
type User struct {
	ID           int    `json:"id_user"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	RoleID       int    `json:"id_role"`
	Role         string `json:"role,omitempty"`
}

// Role names a permission level granted to users.
type Role struct {
	ID   int    `json:"id_role"`
	Name string `json:"name"`
}
