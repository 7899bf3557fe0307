package domain

// Role gates hotel/room write operations.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
)

type User struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"` // stored lowercase
	Name         string  `json:"name"`
	PasswordHash string  `json:"-"`
	Role         Role    `json:"role"`
	Phone        *string `json:"phone,omitempty"`
}
