package dto

import "time"

type CreateUserRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin user" example:"user"`
}

type UpdateUserRequestDTO struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
	IsActive *bool   `json:"isActive,omitempty"`
}

type UserResponseDTO struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role" example:"user"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpdateVoucherRequestDTO struct {
	Duration  *int    `json:"duration,omitempty" validate:"omitempty,gt=0"`
	Price     *int64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	DataLimit *string `json:"dataLimit,omitempty"`
	Status    *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type CorrectPaymentRequestDTO struct {
	Status string `json:"status" validate:"required,oneof=success failed" example:"failed"`
}

type RevenuePointDTO struct {
	Period   time.Time `json:"period"`
	Revenue  int64     `json:"revenue" example:"120000"`
	Payments int       `json:"payments" example:"12"`
}
