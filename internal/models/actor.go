package models

// Role tags the requesting user. Role-specific data shaping (a parent sees
// the child column in history exports) dispatches on this value instead of a
// stringly-keyed lookup table.
type Role string

const (
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Actor identifies the caller of history and export operations. It is passed
// explicitly so tests can inject any identity.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// PaymentMethod enumerates supported payment instruments.
type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentPaypal PaymentMethod = "paypal"
	PaymentBank   PaymentMethod = "bank"
)

// PaymentResult is what the external payment processor reports back.
type PaymentResult struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference"`
}
