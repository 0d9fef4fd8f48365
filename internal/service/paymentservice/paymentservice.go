package paymentservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kwachanet/hotspot/internal/domain"
	"github.com/kwachanet/hotspot/internal/notify"
	"github.com/kwachanet/hotspot/internal/service/voucherservice"
	"github.com/kwachanet/hotspot/pkg/codes"
	"go.uber.org/zap"
)

type Repo interface {
	Save(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	FindByID(ctx context.Context, id int) (*domain.Payment, error)
	FindByReference(ctx context.Context, reference string) (*domain.Payment, error)
	List(ctx context.Context, limit int) ([]domain.Payment, error)
	FindPending(ctx context.Context, limit int) ([]domain.Payment, error)
	MarkSuccess(ctx context.Context, id int, transactionID string, providerResponse []byte, completedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id int, errorCode, failureReason string, providerResponse []byte, completedAt time.Time) (bool, error)
	Cancel(ctx context.Context, id int, cancelledAt time.Time) (bool, error)
	ForceStatus(ctx context.Context, id int, status string, at time.Time) error
	Stats(ctx context.Context) (total int, successful int, revenue int64, err error)
	RevenueByPeriod(ctx context.Context, period string) ([]domain.RevenuePoint, error)
}

// Enqueuer hands a freshly created payment over to the settlement engine.
// Initiate returns the pending record without waiting for settlement.
type Enqueuer interface {
	Enqueue(ctx context.Context, paymentID int) error
}

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrAmountMismatch      = errors.New("amount does not match voucher price")
	ErrUnknownMethod       = errors.New("unknown payment method")
	ErrInvalidPaymentState = errors.New("illegal payment state transition")
)

type Service struct {
	repo        Repo
	voucherRepo voucherservice.Repo
	sessionRepo voucherservice.SessionRepo
	enqueuer    Enqueuer
	dispatcher  notify.Dispatcher
	gen         *codes.Generator
}

func New(repo Repo, voucherRepo voucherservice.Repo, sessionRepo voucherservice.SessionRepo,
	enqueuer Enqueuer, dispatcher notify.Dispatcher, gen *codes.Generator) *Service {
	return &Service{
		repo:        repo,
		voucherRepo: voucherRepo,
		sessionRepo: sessionRepo,
		enqueuer:    enqueuer,
		dispatcher:  dispatcher,
		gen:         gen,
	}
}

// Initiate validates the request against the bound voucher, records a pending
// payment and queues it for settlement. The caller gets the pending record
// back immediately; the provider call happens on a settlement worker.
func (s *Service) Initiate(ctx context.Context, amount int64, phoneNumber, paymentMethod string, voucherID int, userID *int) (*domain.Payment, error) {
	if paymentMethod != domain.MethodMTNMoMo && paymentMethod != domain.MethodAirtelMoney {
		return nil, ErrUnknownMethod
	}

	voucher, err := s.voucherRepo.FindByID(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, voucherservice.ErrVoucherNotFound
	}
	if voucher.IsUsed {
		return nil, voucherservice.ErrVoucherAlreadyUsed
	}
	if amount != voucher.Price {
		zap.L().Info("payment amount mismatch",
			zap.Int64("amount", amount),
			zap.Int64("price", voucher.Price),
			zap.Int("voucherID", voucherID),
		)
		return nil, ErrAmountMismatch
	}

	payment := &domain.Payment{
		Amount:        amount,
		PhoneNumber:   phoneNumber,
		PaymentMethod: paymentMethod,
		VoucherID:     voucherID,
		UserID:        userID,
		Status:        domain.PaymentStatusPending,
		Reference:     s.gen.PaymentReference(),
	}
	payment, err = s.repo.Save(ctx, payment)
	if err != nil {
		zap.L().Error("can't save payment", zap.Error(err))
		return nil, err
	}

	if err := s.enqueuer.Enqueue(ctx, payment.ID); err != nil {
		// the pending record stays queued in the database, the sweep will
		// pick it up
		zap.L().Warn("can't enqueue settlement, leaving to sweep", zap.Int("paymentID", payment.ID), zap.Error(err))
	}

	zap.L().Info("payment initiated",
		zap.Int("paymentID", payment.ID),
		zap.String("reference", payment.Reference),
		zap.String("method", paymentMethod),
	)
	return payment, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (*domain.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *Service) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	payment, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]domain.Payment, error) {
	return s.repo.List(ctx, limit)
}

// Cancel flips a payment that is still pending. The conditional update means
// a settlement outcome applied meanwhile wins and the cancel is rejected; an
// in-flight provider call is never aborted, its outcome is simply discarded
// against the cancelled row.
func (s *Service) Cancel(ctx context.Context, id int) (*domain.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	now := time.Now()
	ok, err := s.repo.Cancel(ctx, id, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidPaymentState
	}

	payment.Status = domain.PaymentStatusCancelled
	payment.CancelledAt = &now

	s.dispatcher.Send(ctx, notify.KindPaymentCancelled, payment.PhoneNumber, map[string]string{
		"reference": payment.Reference,
	})

	zap.L().Info("payment cancelled", zap.Int("paymentID", id), zap.String("reference", payment.Reference))
	return payment, nil
}

// Correct is the admin escape hatch and the only path allowed to leave a
// terminal status: success -> failed frees the voucher, pending/failed ->
// success consumes it.
func (s *Service) Correct(ctx context.Context, id int, newStatus string) (*domain.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	now := time.Now()
	switch {
	case newStatus == domain.PaymentStatusSuccess &&
		(payment.Status == domain.PaymentStatusPending || payment.Status == domain.PaymentStatusFailed):
		if err := s.repo.ForceStatus(ctx, id, domain.PaymentStatusSuccess, now); err != nil {
			return nil, err
		}
		ok, err := s.voucherRepo.MarkUsed(ctx, payment.VoucherID, payment.UserID, now)
		if err != nil {
			return nil, err
		}
		if ok {
			if err := s.openSession(ctx, payment, now); err != nil {
				return nil, err
			}
		}
		payment.Status = domain.PaymentStatusSuccess
		payment.CompletedAt = &now

	case newStatus == domain.PaymentStatusFailed && payment.Status == domain.PaymentStatusSuccess:
		if err := s.repo.ForceStatus(ctx, id, domain.PaymentStatusFailed, now); err != nil {
			return nil, err
		}
		if err := s.voucherRepo.Release(ctx, payment.VoucherID); err != nil {
			return nil, err
		}
		payment.Status = domain.PaymentStatusFailed

	default:
		return nil, ErrInvalidPaymentState
	}

	zap.L().Info("payment corrected by admin",
		zap.Int("paymentID", id),
		zap.String("newStatus", newStatus),
	)
	return payment, nil
}

func (s *Service) openSession(ctx context.Context, payment *domain.Payment, now time.Time) error {
	voucher, err := s.voucherRepo.FindByID(ctx, payment.VoucherID)
	if err != nil {
		return err
	}
	if voucher == nil {
		return voucherservice.ErrVoucherNotFound
	}

	session := &domain.Session{
		ID:            uuid.NewString(),
		VoucherID:     voucher.ID,
		UserID:        payment.UserID,
		DurationHours: voucher.DurationHours,
		DataLimit:     voucher.DataLimit,
		StartTime:     now,
		EndTime:       now.Add(time.Duration(voucher.DurationHours) * time.Hour),
		IsActive:      true,
	}
	return s.sessionRepo.Save(ctx, session)
}
