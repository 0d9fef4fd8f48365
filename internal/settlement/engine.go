package settlement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kwachanet/hotspot/internal/config"
	"github.com/kwachanet/hotspot/internal/domain"
	"github.com/kwachanet/hotspot/internal/gateway"
	"github.com/kwachanet/hotspot/internal/notify"
	"github.com/kwachanet/hotspot/internal/service/paymentservice"
	"github.com/kwachanet/hotspot/internal/service/voucherservice"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	sweepLimit = 1000
	queueSize  = 256

	// ErrCodeProcessing marks failures of the settlement machinery itself,
	// as opposed to a decline returned by the provider.
	ErrCodeProcessing = "PROCESSING_ERROR"
	// ErrCodeVoucherUsed marks a settlement that lost the voucher
	// compare-and-set to a concurrent redemption.
	ErrCodeVoucherUsed = "VOUCHER_ALREADY_USED"
)

// Engine consumes pending payments, runs the provider call and applies the
// outcome. One payment settles on one worker; the periodic sweep re-enqueues
// pending payments that never reached the queue (enqueue failure, restart).
type Engine struct {
	paymentRepo paymentservice.Repo
	voucherRepo voucherservice.Repo
	sessionRepo voucherservice.SessionRepo
	providers   map[string]gateway.Provider
	dispatcher  notify.Dispatcher

	workerPool    WorkerPoolI
	jobs          chan int
	inFlight      sync.Map
	sweepInterval time.Duration
}

func New(cfg *config.Config, paymentRepo paymentservice.Repo, voucherRepo voucherservice.Repo,
	sessionRepo voucherservice.SessionRepo, providers map[string]gateway.Provider,
	dispatcher notify.Dispatcher) *Engine {
	return &Engine{
		paymentRepo:   paymentRepo,
		voucherRepo:   voucherRepo,
		sessionRepo:   sessionRepo,
		providers:     providers,
		dispatcher:    dispatcher,
		workerPool:    NewWorkerPool(cfg.SettlementWorkers),
		jobs:          make(chan int, queueSize),
		sweepInterval: cfg.SweepInterval,
	}
}

// Enqueue implements paymentservice.Enqueuer.
func (e *Engine) Enqueue(ctx context.Context, paymentID int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case e.jobs <- paymentID:
		return nil
	}
}

func (e *Engine) Start(ctx context.Context) {
	zap.L().Info("settlement engine started")
	go e.run(ctx)
}

func (e *Engine) run(ctx context.Context) {
	ticker := time.NewTicker(e.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("context canceled, stopping settlement engine")
			e.workerPool.Close()
			return
		case paymentID := <-e.jobs:
			e.dispatch(ctx, paymentID)
		case <-ticker.C:
			e.sweep(ctx)
		}
	}
}

// sweep re-enqueues payments stuck in pending, e.g. created right before a
// restart.
func (e *Engine) sweep(ctx context.Context) {
	payments, err := e.paymentRepo.FindPending(ctx, sweepLimit)
	if err != nil {
		zap.L().Error("failed to fetch pending payments", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, payment := range payments {
		payment := payment
		g.Go(func() error {
			e.dispatch(ctx, payment.ID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		zap.L().Error("error dispatching pending payments", zap.Error(err))
	}
}

func (e *Engine) dispatch(ctx context.Context, paymentID int) {
	if _, loaded := e.inFlight.LoadOrStore(paymentID, struct{}{}); loaded {
		return
	}

	err := e.workerPool.AddTask(ctx, func() error {
		defer e.inFlight.Delete(paymentID)
		return e.settle(ctx, paymentID)
	})
	if err != nil {
		e.inFlight.Delete(paymentID)
		zap.L().Error("can't schedule settlement", zap.Int("paymentID", paymentID), zap.Error(err))
	}
}

func (e *Engine) settle(ctx context.Context, paymentID int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("panic during settlement", zap.Int("paymentID", paymentID), zap.Any("panic", r))
			e.markProcessingError(ctx, paymentID, fmt.Sprintf("panic: %v", r))
			err = fmt.Errorf("settlement panic: %v", r)
		}
	}()

	payment, err := e.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("can't load payment %d: %w", paymentID, err)
	}
	if payment == nil || payment.Status != domain.PaymentStatusPending {
		// settled or cancelled since it was queued
		return nil
	}

	provider, ok := e.providers[payment.PaymentMethod]
	if !ok {
		e.markProcessingError(ctx, paymentID, "no provider for method "+payment.PaymentMethod)
		return nil
	}

	outcome, err := provider.Submit(ctx, gateway.Request{
		Amount:      payment.Amount,
		PhoneNumber: payment.PhoneNumber,
		Reference:   payment.Reference,
	})
	if err != nil {
		if ctx.Err() != nil {
			// shutdown mid-call, leave the payment pending for the next sweep
			return ctx.Err()
		}
		e.markProcessingError(ctx, paymentID, err.Error())
		return nil
	}

	if outcome.Success {
		return e.applySuccess(ctx, payment, outcome)
	}
	return e.applyFailure(ctx, payment, outcome)
}

// applySuccess serializes against concurrent redemptions through the voucher
// compare-and-set: the voucher is taken first, then the payment is
// confirmed. If the payment left pending meanwhile (cancelled), the voucher
// is released again.
func (e *Engine) applySuccess(ctx context.Context, payment *domain.Payment, outcome *gateway.Outcome) error {
	now := time.Now()

	used, err := e.voucherRepo.MarkUsed(ctx, payment.VoucherID, payment.UserID, now)
	if err != nil {
		return fmt.Errorf("can't mark voucher %d used: %w", payment.VoucherID, err)
	}
	if !used {
		zap.L().Warn("voucher consumed by a concurrent redemption, failing payment",
			zap.Int("paymentID", payment.ID),
			zap.Int("voucherID", payment.VoucherID),
		)
		_, err := e.paymentRepo.MarkFailed(ctx, payment.ID, ErrCodeVoucherUsed,
			"voucher was redeemed before settlement completed", outcome.Raw, now)
		return err
	}

	ok, err := e.paymentRepo.MarkSuccess(ctx, payment.ID, outcome.TransactionID, outcome.Raw, now)
	if err != nil {
		return fmt.Errorf("can't mark payment %d success: %w", payment.ID, err)
	}
	if !ok {
		// cancelled while the provider call was in flight; undo the voucher
		zap.L().Warn("payment no longer pending, discarding outcome",
			zap.Int("paymentID", payment.ID),
			zap.String("transactionID", outcome.TransactionID),
		)
		return e.voucherRepo.Release(ctx, payment.VoucherID)
	}

	voucher, err := e.voucherRepo.FindByID(ctx, payment.VoucherID)
	if err != nil || voucher == nil {
		return fmt.Errorf("can't load voucher %d after settlement: %w", payment.VoucherID, err)
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
	if err := e.sessionRepo.Save(ctx, session); err != nil {
		return fmt.Errorf("can't create session for payment %d: %w", payment.ID, err)
	}

	e.dispatcher.Send(ctx, notify.KindVoucherCode, payment.PhoneNumber, map[string]string{
		"code":      voucher.Code,
		"duration":  fmt.Sprintf("%d", voucher.DurationHours),
		"dataLimit": voucher.DataLimit,
	})

	zap.L().Info("payment settled",
		zap.Int("paymentID", payment.ID),
		zap.String("transactionID", outcome.TransactionID),
		zap.String("voucherCode", voucher.Code),
	)
	return nil
}

func (e *Engine) applyFailure(ctx context.Context, payment *domain.Payment, outcome *gateway.Outcome) error {
	ok, err := e.paymentRepo.MarkFailed(ctx, payment.ID, outcome.ErrorCode, outcome.Message, outcome.Raw, time.Now())
	if err != nil {
		return fmt.Errorf("can't mark payment %d failed: %w", payment.ID, err)
	}
	if !ok {
		zap.L().Warn("payment no longer pending, discarding failure",
			zap.Int("paymentID", payment.ID),
			zap.String("errorCode", outcome.ErrorCode),
		)
		return nil
	}

	e.dispatcher.Send(ctx, notify.KindPaymentFailure, payment.PhoneNumber, map[string]string{
		"reference": payment.Reference,
		"reason":    outcome.Message,
	})

	zap.L().Info("payment declined by provider",
		zap.Int("paymentID", payment.ID),
		zap.String("errorCode", outcome.ErrorCode),
	)
	return nil
}

func (e *Engine) markProcessingError(ctx context.Context, paymentID int, reason string) {
	if _, err := e.paymentRepo.MarkFailed(ctx, paymentID, ErrCodeProcessing, reason, nil, time.Now()); err != nil {
		zap.L().Error("can't record processing error", zap.Int("paymentID", paymentID), zap.Error(err))
	}
}
