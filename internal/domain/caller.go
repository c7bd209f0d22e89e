package domain

// Caller is the already-authenticated identity a request acts as. It is passed
// explicitly into every service operation.
type Caller struct {
	UserID uint
	Role   UserRole
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
