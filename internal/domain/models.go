package domain

import "time"

const (
	RoleAdmin string = "admin"
	RoleUser  string = "user"
)

const (
	// VoucherStatusActive voucher is on sale and redeemable;
	VoucherStatusActive string = "active"
	// VoucherStatusInactive voucher disabled by an administrator;
	VoucherStatusInactive string = "inactive"
)

const (
	// PaymentStatusPending payment created, awaiting provider confirmation;
	PaymentStatusPending string = "pending"
	// PaymentStatusSuccess payment confirmed by the provider;
	PaymentStatusSuccess string = "success"
	// PaymentStatusFailed payment rejected by the provider;
	PaymentStatusFailed string = "failed"
	// PaymentStatusCancelled payment cancelled before processing;
	PaymentStatusCancelled string = "cancelled"
)

const (
	MethodMTNMoMo     string = "mtn_momo"
	MethodAirtelMoney string = "airtel_money"
)

type User struct {
	ID           int       `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

type Voucher struct {
	ID            int        `db:"id"`
	Code          string     `db:"code"`
	DurationHours int        `db:"duration_hours"`
	Price         int64      `db:"price"`
	DataLimit     string     `db:"data_limit"`
	Status        string     `db:"status"`
	IsUsed        bool       `db:"is_used"`
	CreatedAt     time.Time  `db:"created_at"`
	ExpiresAt     time.Time  `db:"expires_at"`
	UsedAt        *time.Time `db:"used_at"`
	UserID        *int       `db:"user_id"`
}

type Payment struct {
	ID               int        `db:"id"`
	Amount           int64      `db:"amount"`
	PhoneNumber      string     `db:"phone_number"`
	PaymentMethod    string     `db:"payment_method"`
	VoucherID        int        `db:"voucher_id"`
	UserID           *int       `db:"user_id"`
	Status           string     `db:"status"`
	TransactionID    *string    `db:"transaction_id"`
	Reference        string     `db:"reference"`
	ProviderResponse []byte     `db:"provider_response"`
	FailureReason    *string    `db:"failure_reason"`
	ErrorCode        *string    `db:"error_code"`
	CreatedAt        time.Time  `db:"created_at"`
	CompletedAt      *time.Time `db:"completed_at"`
	CancelledAt      *time.Time `db:"cancelled_at"`
}

type Session struct {
	ID            string    `db:"id"`
	VoucherID     int       `db:"voucher_id"`
	UserID        *int      `db:"user_id"`
	DurationHours int       `db:"duration_hours"`
	DataLimit     string    `db:"data_limit"`
	StartTime     time.Time `db:"start_time"`
	EndTime       time.Time `db:"end_time"`
	IsActive      bool      `db:"is_active"`
}

// Stats is the aggregate snapshot shown on the admin dashboard.
type Stats struct {
	TotalVouchers      int   `json:"totalVouchers"`
	UsedVouchers       int   `json:"usedVouchers"`
	AvailableVouchers  int   `json:"availableVouchers"`
	TotalPayments      int   `json:"totalPayments"`
	SuccessfulPayments int   `json:"successfulPayments"`
	TotalRevenue       int64 `json:"totalRevenue"`
	ActiveUsers        int   `json:"activeUsers"`
}

type RevenuePoint struct {
	Period   time.Time `json:"period"`
	Revenue  int64     `json:"revenue"`
	Payments int       `json:"payments"`
}
