package models

// RegisterRequest represents a partner registration request. Kind is set
// here once and is immutable afterwards.
type RegisterRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	CompanyName string `json:"company_name" validate:"omitempty,min=2"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,min=7"`
	Password    string `json:"password" validate:"required,min=8"`
	Kind        string `json:"kind" validate:"required,oneof=referral reseller service"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	Token   string       `json:"token"`
	Partner *PartnerInfo `json:"partner"`
}

// PartnerInfo represents partner information in responses
type PartnerInfo struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name,omitempty"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Kind        string `json:"kind"`
	Role        string `json:"role"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}
