package dto

import "time"

type GenerateVoucherRequestDTO struct {
	Duration  int    `json:"duration" validate:"required,gt=0" example:"24"`
	Price     int64  `json:"price" validate:"required,gt=0" example:"10000"`
	DataLimit string `json:"dataLimit" example:"5GB"`
}

type ValidateVoucherRequestDTO struct {
	Code string `json:"code" validate:"required" example:"MW-A1B2C3D4"`
}

type RedeemVoucherRequestDTO struct {
	Code   string `json:"code" validate:"required" example:"MW-A1B2C3D4"`
	UserID *int   `json:"userId,omitempty"`
}

type VoucherResponseDTO struct {
	ID        int        `json:"id"`
	Code      string     `json:"code" example:"MW-A1B2C3D4"`
	Duration  int        `json:"duration" example:"24"`
	Price     int64      `json:"price" example:"10000"`
	DataLimit string     `json:"dataLimit" example:"5GB"`
	Status    string     `json:"status" example:"active"`
	IsUsed    bool       `json:"isUsed"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	UserID    *int       `json:"userId,omitempty"`
}

// VoucherSummaryDTO is the read-only view returned by validate and inside
// redemption/verification responses.
type VoucherSummaryDTO struct {
	Code      string    `json:"code" example:"MW-A1B2C3D4"`
	Duration  int       `json:"duration" example:"24"`
	DataLimit string    `json:"dataLimit" example:"5GB"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SessionDTO struct {
	ID        string    `json:"id"`
	VoucherID int       `json:"voucherId"`
	Duration  int       `json:"duration" example:"24"`
	DataLimit string    `json:"dataLimit" example:"5GB"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	IsActive  bool      `json:"isActive"`
}

type RedeemResponseDTO struct {
	Session SessionDTO        `json:"session"`
	Voucher VoucherSummaryDTO `json:"voucher"`
}
