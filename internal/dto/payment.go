package dto

import "time"

type CreatePaymentRequestDTO struct {
	Amount        int64  `json:"amount" validate:"required,gt=0" example:"10000"`
	PhoneNumber   string `json:"phoneNumber" validate:"required,min=10,max=15" example:"256700000000"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=mtn_momo airtel_money" example:"mtn_momo"`
	VoucherID     int    `json:"voucherId" validate:"required,gt=0"`
	UserID        *int   `json:"userId,omitempty"`
}

type PaymentResponseDTO struct {
	ID            int        `json:"id"`
	Reference     string     `json:"reference" example:"MW-1717171717171-0042"`
	Status        string     `json:"status" example:"pending"`
	Amount        int64      `json:"amount" example:"10000"`
	PhoneNumber   string     `json:"phoneNumber" example:"256700000000"`
	PaymentMethod string     `json:"paymentMethod" example:"mtn_momo"`
	VoucherID     int        `json:"voucherId"`
	TransactionID *string    `json:"transactionId,omitempty"`
	FailureReason *string    `json:"failureReason,omitempty"`
	ErrorCode     *string    `json:"errorCode,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty"`
}

// VerifyPaymentResponseDTO carries voucher details only once the payment
// settled successfully.
type VerifyPaymentResponseDTO struct {
	Payment PaymentResponseDTO `json:"payment"`
	Voucher *VoucherSummaryDTO `json:"voucher,omitempty"`
}
