package models

// User is the typed view of a user document. The password hash never leaves
// the server.
type User struct {
	ID        string `json:"id" mapstructure:"id"`
	Name      string `json:"name" mapstructure:"name"`
	Email     string `json:"email" mapstructure:"email"`
	Role      string `json:"role" mapstructure:"role"`
	Password  string `json:"-" mapstructure:"password"`
	CreatedAt string `json:"createdAt" mapstructure:"createdAt"`
}

// UserRegister defines the payload for the register operation
type UserRegister struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=user publisher"`
}

// UserLogin defines the payload for the login operation
type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}
