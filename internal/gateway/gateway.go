package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request is everything a provider needs to collect a mobile-money payment.
type Request struct {
	Amount      int64
	PhoneNumber string
	Reference   string
}

// Outcome is the normalized provider result. A declined payment is a normal
// Outcome with Success=false, not an error; errors are reserved for the call
// itself breaking (context cancelled).
type Outcome struct {
	Success       bool
	Provider      string
	TransactionID string
	ErrorCode     string
	Message       string
	Raw           json.RawMessage
}

// Provider abstracts a mobile-money gateway. The simulators below model the
// real integrations closely enough that a production client can drop in
// behind the same contract.
type Provider interface {
	Name() string
	Submit(ctx context.Context, req Request) (*Outcome, error)
}

type failureReason struct {
	code    string
	message string
}

// Simulator drives one provider's probability model: a fixed success rate, a
// processing delay and a fixed failure taxonomy drawn uniformly on decline.
type Simulator struct {
	name        string
	txnPrefix   string
	successRate float64
	delay       time.Duration
	failures    []failureReason
	buildRaw    func(req Request, txnID string) any

	mu  sync.Mutex
	rng *rand.Rand
}

func (s *Simulator) Name() string {
	return s.name
}

func (s *Simulator) Submit(ctx context.Context, req Request) (*Outcome, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
	}

	s.mu.Lock()
	draw := s.rng.Float64()
	pick := s.rng.Intn(len(s.failures))
	s.mu.Unlock()

	if draw < s.successRate {
		txnID := s.transactionID()
		raw, err := json.Marshal(s.buildRaw(req, txnID))
		if err != nil {
			return nil, fmt.Errorf("can't marshal provider response: %w", err)
		}
		zap.L().Debug("simulated payment approved",
			zap.String("provider", s.name),
			zap.String("reference", req.Reference),
			zap.String("transactionID", txnID),
		)
		return &Outcome{
			Success:       true,
			Provider:      s.name,
			TransactionID: txnID,
			Message:       "Payment successful",
			Raw:           raw,
		}, nil
	}

	reason := s.failures[pick]
	raw, err := json.Marshal(map[string]any{
		"provider":  s.name,
		"reference": req.Reference,
		"errorCode": reason.code,
		"message":   reason.message,
	})
	if err != nil {
		return nil, fmt.Errorf("can't marshal provider response: %w", err)
	}
	zap.L().Debug("simulated payment declined",
		zap.String("provider", s.name),
		zap.String("reference", req.Reference),
		zap.String("errorCode", reason.code),
	)
	return &Outcome{
		Success:   false,
		Provider:  s.name,
		ErrorCode: reason.code,
		Message:   reason.message,
		Raw:       raw,
	}, nil
}

// transactionID produces "<PREFIX>_<12 hex>" per provider convention.
func (s *Simulator) transactionID() string {
	u := uuid.New()
	return fmt.Sprintf("%s_%X", s.txnPrefix, u[:6])
}

func newRNG(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rng
}
