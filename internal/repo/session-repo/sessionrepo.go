package sessionrepo

import (
	"context"

	"github.com/kwachanet/hotspot/internal/domain"
	"github.com/kwachanet/hotspot/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Save(ctx context.Context, session *domain.Session) error {
	query := `
        INSERT INTO sessions (id, voucher_id, user_id, duration_hours, data_limit, start_time, end_time, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.db.Exec(ctx, query, session.ID, session.VoucherID, session.UserID,
		session.DurationHours, session.DataLimit, session.StartTime, session.EndTime, session.IsActive)
	if err != nil {
		zap.L().Error("can't save session", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) FindByVoucherID(ctx context.Context, voucherID int) ([]domain.Session, error) {
	query := `
        SELECT id, voucher_id, user_id, duration_hours, data_limit, start_time, end_time, is_active
        FROM sessions
        WHERE voucher_id = $1
        ORDER BY start_time DESC
    `
	rows, err := r.db.Query(ctx, query, voucherID)
	if err != nil {
		zap.L().Error("can't query sessions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		err := rows.Scan(&s.ID, &s.VoucherID, &s.UserID, &s.DurationHours, &s.DataLimit,
			&s.StartTime, &s.EndTime, &s.IsActive)
		if err != nil {
			zap.L().Error("can't scan session row", zap.Error(err))
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
