package paymentrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kwachanet/hotspot/internal/domain"
	"github.com/kwachanet/hotspot/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

const paymentColumns = `id, amount, phone_number, payment_method, voucher_id, user_id, status,
        transaction_id, reference, provider_response, failure_reason, error_code,
        created_at, completed_at, cancelled_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.Amount, &p.PhoneNumber, &p.PaymentMethod, &p.VoucherID, &p.UserID,
		&p.Status, &p.TransactionID, &p.Reference, &p.ProviderResponse, &p.FailureReason,
		&p.ErrorCode, &p.CreatedAt, &p.CompletedAt, &p.CancelledAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Save(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	query := `
        INSERT INTO payments (amount, phone_number, payment_method, voucher_id, user_id, status, reference)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at
    `
	row := r.db.QueryRow(ctx, query, payment.Amount, payment.PhoneNumber, payment.PaymentMethod,
		payment.VoucherID, payment.UserID, payment.Status, payment.Reference)
	if err := row.Scan(&payment.ID, &payment.CreatedAt); err != nil {
		zap.L().Error("can't save payment", zap.Error(err))
		return nil, err
	}
	return payment, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Payment, error) {
	query := `
        SELECT ` + paymentColumns + `
        FROM payments
        WHERE id = $1
    `
	payment, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find payment by id", zap.Error(err))
		return nil, err
	}
	return payment, nil
}

func (r *Repository) FindByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	query := `
        SELECT ` + paymentColumns + `
        FROM payments
        WHERE reference = $1
    `
	payment, err := scanPayment(r.db.QueryRow(ctx, query, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find payment by reference", zap.Error(err))
		return nil, err
	}
	return payment, nil
}

func (r *Repository) List(ctx context.Context, limit int) ([]domain.Payment, error) {
	query := `
        SELECT ` + paymentColumns + `
        FROM payments
        ORDER BY created_at DESC
        LIMIT $1
    `
	return r.queryPayments(ctx, query, limit)
}

// FindPending returns the oldest still-pending payments; the settlement
// engine sweeps these to recover work lost on restart.
func (r *Repository) FindPending(ctx context.Context, limit int) ([]domain.Payment, error) {
	query := `
        SELECT ` + paymentColumns + `
        FROM payments
        WHERE status = 'pending'
        ORDER BY created_at ASC
        LIMIT $1
    `
	return r.queryPayments(ctx, query, limit)
}

func (r *Repository) queryPayments(ctx context.Context, query string, args ...interface{}) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't query payments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		err := rows.Scan(&p.ID, &p.Amount, &p.PhoneNumber, &p.PaymentMethod, &p.VoucherID, &p.UserID,
			&p.Status, &p.TransactionID, &p.Reference, &p.ProviderResponse, &p.FailureReason,
			&p.ErrorCode, &p.CreatedAt, &p.CompletedAt, &p.CancelledAt)
		if err != nil {
			zap.L().Error("can't scan payment row", zap.Error(err))
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

// MarkSuccess transitions pending -> success. Returns false when the payment
// already left the pending state (settled or cancelled meanwhile).
func (r *Repository) MarkSuccess(ctx context.Context, id int, transactionID string, providerResponse []byte, completedAt time.Time) (bool, error) {
	query := `
        UPDATE payments
        SET status = 'success', transaction_id = $1, provider_response = $2, completed_at = $3
        WHERE id = $4 AND status = 'pending'
    `
	tag, err := r.db.Exec(ctx, query, transactionID, providerResponse, completedAt, id)
	if err != nil {
		zap.L().Error("can't mark payment success", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkFailed transitions pending -> failed under the same condition as
// MarkSuccess.
func (r *Repository) MarkFailed(ctx context.Context, id int, errorCode, failureReason string, providerResponse []byte, completedAt time.Time) (bool, error) {
	query := `
        UPDATE payments
        SET status = 'failed', error_code = $1, failure_reason = $2, provider_response = $3, completed_at = $4
        WHERE id = $5 AND status = 'pending'
    `
	tag, err := r.db.Exec(ctx, query, errorCode, failureReason, providerResponse, completedAt, id)
	if err != nil {
		zap.L().Error("can't mark payment failed", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Cancel transitions pending -> cancelled.
func (r *Repository) Cancel(ctx context.Context, id int, cancelledAt time.Time) (bool, error) {
	query := `
        UPDATE payments
        SET status = 'cancelled', cancelled_at = $1
        WHERE id = $2 AND status = 'pending'
    `
	tag, err := r.db.Exec(ctx, query, cancelledAt, id)
	if err != nil {
		zap.L().Error("can't cancel payment", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ForceStatus is the unconditional admin escape hatch; it is the only write
// that may leave a terminal state.
func (r *Repository) ForceStatus(ctx context.Context, id int, status string, at time.Time) error {
	query := `
        UPDATE payments
        SET status = $1, completed_at = $2
        WHERE id = $3
    `
	_, err := r.db.Exec(ctx, query, status, at, id)
	if err != nil {
		zap.L().Error("can't force payment status", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) Stats(ctx context.Context) (total int, successful int, revenue int64, err error) {
	query := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = 'success'),
               COALESCE(SUM(amount) FILTER (WHERE status = 'success'), 0)
        FROM payments
    `
	if err = r.db.QueryRow(ctx, query).Scan(&total, &successful, &revenue); err != nil {
		zap.L().Error("can't count payments", zap.Error(err))
		return 0, 0, 0, err
	}
	return total, successful, revenue, nil
}

// RevenueByPeriod groups successful payments with date_trunc; period must be
// one of day, week, month, year (validated by the caller).
func (r *Repository) RevenueByPeriod(ctx context.Context, period string) ([]domain.RevenuePoint, error) {
	query := `
        SELECT date_trunc($1, completed_at) AS period, SUM(amount), COUNT(*)
        FROM payments
        WHERE status = 'success' AND completed_at IS NOT NULL
        GROUP BY period
        ORDER BY period ASC
    `
	rows, err := r.db.Query(ctx, query, period)
	if err != nil {
		zap.L().Error("can't query revenue", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var points []domain.RevenuePoint
	for rows.Next() {
		var p domain.RevenuePoint
		if err := rows.Scan(&p.Period, &p.Revenue, &p.Payments); err != nil {
			zap.L().Error("can't scan revenue row", zap.Error(err))
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}
