package voucherrepo

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

const voucherColumns = `id, code, duration_hours, price, data_limit, status, is_used, created_at, expires_at, used_at, user_id`

func scanVoucher(row pgx.Row) (*domain.Voucher, error) {
	var v domain.Voucher
	err := row.Scan(&v.ID, &v.Code, &v.DurationHours, &v.Price, &v.DataLimit, &v.Status,
		&v.IsUsed, &v.CreatedAt, &v.ExpiresAt, &v.UsedAt, &v.UserID)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repository) Save(ctx context.Context, voucher *domain.Voucher) (*domain.Voucher, error) {
	query := `
        INSERT INTO vouchers (code, duration_hours, price, data_limit, status, is_used, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at
    `
	row := r.db.QueryRow(ctx, query, voucher.Code, voucher.DurationHours, voucher.Price,
		voucher.DataLimit, voucher.Status, voucher.IsUsed, voucher.ExpiresAt)
	if err := row.Scan(&voucher.ID, &voucher.CreatedAt); err != nil {
		zap.L().Error("can't save voucher", zap.Error(err))
		return nil, err
	}
	return voucher, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Voucher, error) {
	query := `
        SELECT ` + voucherColumns + `
        FROM vouchers
        WHERE id = $1
    `
	voucher, err := scanVoucher(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find voucher by id", zap.Error(err))
		return nil, err
	}
	return voucher, nil
}

func (r *Repository) FindByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	query := `
        SELECT ` + voucherColumns + `
        FROM vouchers
        WHERE code = $1
    `
	voucher, err := scanVoucher(r.db.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find voucher by code", zap.Error(err))
		return nil, err
	}
	return voucher, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Voucher, error) {
	query := `
        SELECT ` + voucherColumns + `
        FROM vouchers
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		zap.L().Error("can't list vouchers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var vouchers []domain.Voucher
	for rows.Next() {
		var v domain.Voucher
		err := rows.Scan(&v.ID, &v.Code, &v.DurationHours, &v.Price, &v.DataLimit, &v.Status,
			&v.IsUsed, &v.CreatedAt, &v.ExpiresAt, &v.UsedAt, &v.UserID)
		if err != nil {
			zap.L().Error("can't scan voucher row", zap.Error(err))
			return nil, err
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, nil
}

func (r *Repository) Update(ctx context.Context, voucher *domain.Voucher) error {
	query := `
        UPDATE vouchers
        SET duration_hours = $1, price = $2, data_limit = $3, status = $4, expires_at = $5
        WHERE id = $6
    `
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query, voucher.DurationHours, voucher.Price, voucher.DataLimit,
			voucher.Status, voucher.ExpiresAt, voucher.ID)
		if err != nil {
			zap.L().Error("can't update voucher", zap.Error(err))
			return err
		}
		return nil
	})
	return err
}

// MarkUsed is a compare-and-set on is_used: at most one caller wins for a
// given voucher, everyone else gets false.
func (r *Repository) MarkUsed(ctx context.Context, id int, userID *int, usedAt time.Time) (bool, error) {
	query := `
        UPDATE vouchers
        SET is_used = TRUE, used_at = $1, user_id = $2
        WHERE id = $3 AND is_used = FALSE
    `
	tag, err := r.db.Exec(ctx, query, usedAt, userID, id)
	if err != nil {
		zap.L().Error("can't mark voucher used", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Release reverts a redemption; used only by admin payment correction.
func (r *Repository) Release(ctx context.Context, id int) error {
	query := `
        UPDATE vouchers
        SET is_used = FALSE, used_at = NULL, user_id = NULL
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		zap.L().Error("can't release voucher", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int) error {
	query := `
        DELETE FROM vouchers
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		zap.L().Error("can't delete voucher", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) CountTotals(ctx context.Context) (total int, used int, err error) {
	query := `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE is_used = TRUE)
        FROM vouchers
    `
	if err = r.db.QueryRow(ctx, query).Scan(&total, &used); err != nil {
		zap.L().Error("can't count vouchers", zap.Error(err))
		return 0, 0, err
	}
	return total, used, nil
}
