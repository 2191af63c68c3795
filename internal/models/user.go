package models

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a user of the store.
type User struct {
	Base
	Username string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password string `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6"`
	Role     string `json:"role" gorm:"type:varchar(20);not null"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
