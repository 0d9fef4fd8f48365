package voucherservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kwachanet/hotspot/internal/domain"
	"github.com/kwachanet/hotspot/pkg/codes"
	"go.uber.org/zap"
)

type Repo interface {
	Save(ctx context.Context, voucher *domain.Voucher) (*domain.Voucher, error)
	FindByID(ctx context.Context, id int) (*domain.Voucher, error)
	FindByCode(ctx context.Context, code string) (*domain.Voucher, error)
	List(ctx context.Context) ([]domain.Voucher, error)
	Update(ctx context.Context, voucher *domain.Voucher) error
	MarkUsed(ctx context.Context, id int, userID *int, usedAt time.Time) (bool, error)
	Release(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
	CountTotals(ctx context.Context) (total int, used int, err error)
}

type SessionRepo interface {
	Save(ctx context.Context, session *domain.Session) error
	FindByVoucherID(ctx context.Context, voucherID int) ([]domain.Session, error)
}

var (
	ErrInvalidDuration    = errors.New("voucher duration must be positive")
	ErrInvalidPrice       = errors.New("voucher price must be positive")
	ErrVoucherNotFound    = errors.New("voucher not found")
	ErrVoucherAlreadyUsed = errors.New("voucher already used")
	ErrVoucherInactive    = errors.New("voucher is not active")
	ErrVoucherExpired     = errors.New("voucher expired")
)

// code generation retries on a unique-constraint collision; at 36^8
// combinations collisions are vanishingly rare, the retry is there so they
// are impossible rather than unlikely.
const maxCodeAttempts = 3

type Service struct {
	repo        Repo
	sessionRepo SessionRepo
	gen         *codes.Generator
}

func New(repo Repo, sessionRepo SessionRepo, gen *codes.Generator) *Service {
	return &Service{
		repo:        repo,
		sessionRepo: sessionRepo,
		gen:         gen,
	}
}

func (s *Service) Create(ctx context.Context, durationHours int, price int64, dataLimit string) (*domain.Voucher, error) {
	if durationHours <= 0 {
		return nil, ErrInvalidDuration
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}

	now := time.Now()
	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		voucher := &domain.Voucher{
			Code:          s.gen.VoucherCode(),
			DurationHours: durationHours,
			Price:         price,
			DataLimit:     dataLimit,
			Status:        domain.VoucherStatusActive,
			IsUsed:        false,
			ExpiresAt:     now.Add(time.Duration(durationHours) * time.Hour),
		}

		saved, err := s.repo.Save(ctx, voucher)
		if err == nil {
			zap.L().Info("voucher created", zap.String("code", saved.Code), zap.Int("duration", durationHours))
			return saved, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			zap.L().Warn("voucher code collision, regenerating", zap.String("code", voucher.Code))
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// Validate checks a code without consuming it.
func (s *Service) Validate(ctx context.Context, code string) (*domain.Voucher, error) {
	voucher, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, ErrVoucherNotFound
	}
	if voucher.IsUsed {
		return nil, ErrVoucherAlreadyUsed
	}
	if voucher.Status != domain.VoucherStatusActive {
		return nil, ErrVoucherInactive
	}
	if time.Now().After(voucher.ExpiresAt) {
		return nil, ErrVoucherExpired
	}
	return voucher, nil
}

// Redeem consumes a voucher and opens a session. The same checks as Validate
// apply, including the active-status check: an administrator who deactivated
// a voucher expects it unusable on every path. The is_used flip is a
// compare-and-set, so concurrent redeemers of one code get at most one
// winner.
func (s *Service) Redeem(ctx context.Context, code string, userID *int) (*domain.Session, *domain.Voucher, error) {
	voucher, err := s.Validate(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	ok, err := s.repo.MarkUsed(ctx, voucher.ID, userID, now)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrVoucherAlreadyUsed
	}

	session := &domain.Session{
		ID:            uuid.NewString(),
		VoucherID:     voucher.ID,
		UserID:        userID,
		DurationHours: voucher.DurationHours,
		DataLimit:     voucher.DataLimit,
		StartTime:     now,
		EndTime:       now.Add(time.Duration(voucher.DurationHours) * time.Hour),
		IsActive:      true,
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		zap.L().Error("can't create session for redeemed voucher", zap.Int("voucherID", voucher.ID), zap.Error(err))
		return nil, nil, err
	}

	voucher.IsUsed = true
	voucher.UsedAt = &now
	voucher.UserID = userID

	zap.L().Info("voucher redeemed", zap.String("code", voucher.Code), zap.String("sessionID", session.ID))
	return session, voucher, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (*domain.Voucher, error) {
	voucher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, ErrVoucherNotFound
	}
	return voucher, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Voucher, error) {
	return s.repo.List(ctx)
}
