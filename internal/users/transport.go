package users

import "simcoe_portal/internal/upstream"

// CreateUserRequest provisions a staff account on the quote service.
type CreateUserRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=7,max=30"`
	Role        string `json:"role" validate:"required,oneof=admin user"`
	Password    string `json:"password" validate:"required,min=8"`
}

// UpdateUserRequest replaces a staff account's details. Password is
// optional; when blank the upstream keeps the current one.
type UpdateUserRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=7,max=30"`
	Role        string `json:"role" validate:"required,oneof=admin user"`
	Password    string `json:"password" validate:"omitempty,min=8"`
}

func (r CreateUserRequest) toInput() upstream.UserInput {
	return upstream.UserInput{
		Name:        r.Name,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Role:        r.Role,
		Password:    r.Password,
	}
}

func (r UpdateUserRequest) toInput() upstream.UserInput {
	return upstream.UserInput{
		Name:        r.Name,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Role:        r.Role,
		Password:    r.Password,
	}
}
