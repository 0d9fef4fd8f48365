package gateway

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/kwachanet/hotspot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func testRequest() Request {
	return Request{Amount: 5000, PhoneNumber: "+256700000001", Reference: "MW-1-0001"}
}

func TestSimulator_SubmitDeterministic(t *testing.T) {
	// with a fixed seed both simulators produce a stable outcome sequence
	sim := NewMTNMoMo(rand.New(rand.NewSource(42)), 0)
	ref := NewMTNMoMo(rand.New(rand.NewSource(42)), 0)

	for i := 0; i < 20; i++ {
		got, err := sim.Submit(context.Background(), testRequest())
		assert.NoError(t, err)
		want, err := ref.Submit(context.Background(), testRequest())
		assert.NoError(t, err)
		assert.Equal(t, want.Success, got.Success)
		assert.Equal(t, want.ErrorCode, got.ErrorCode)
	}
}

func TestSimulator_SuccessOutcome(t *testing.T) {
	sim := NewMTNMoMo(rand.New(rand.NewSource(42)), 0)

	// walk the sequence until the model approves
	var outcome *Outcome
	var err error
	for i := 0; i < 100; i++ {
		outcome, err = sim.Submit(context.Background(), testRequest())
		assert.NoError(t, err)
		if outcome.Success {
			break
		}
	}
	if !outcome.Success {
		t.Fatal("expected at least one approval in 100 draws")
	}

	assert.Equal(t, "MTN_MOMO", outcome.Provider)
	assert.Regexp(t, `^MTN_[0-9A-F]{12}$`, outcome.TransactionID)

	var raw map[string]any
	assert.NoError(t, json.Unmarshal(outcome.Raw, &raw))
	assert.Equal(t, "SUCCESSFUL", raw["status"])
	assert.Equal(t, "MW-1-0001", raw["externalId"])
}

func TestSimulator_DeclineOutcome(t *testing.T) {
	sim := NewAirtelMoney(rand.New(rand.NewSource(1)), 0)

	// walk the sequence until the model declines
	var outcome *Outcome
	var err error
	for i := 0; i < 100; i++ {
		outcome, err = sim.Submit(context.Background(), testRequest())
		assert.NoError(t, err)
		if !outcome.Success {
			break
		}
	}
	if outcome.Success {
		t.Fatal("expected at least one decline in 100 draws")
	}

	assert.Equal(t, "AIRTEL_MONEY", outcome.Provider)
	assert.NotEmpty(t, outcome.ErrorCode)
	assert.NotEmpty(t, outcome.Message)
	assert.Contains(t, []string{
		"AM_SUBSCRIBER_NOT_FOUND",
		"AM_INSUFFICIENT_BALANCE",
		"AM_PIN_MISMATCH",
		"AM_TRANSACTION_TIMEOUT",
		"AM_SERVICE_UNAVAILABLE",
	}, outcome.ErrorCode)

	var raw map[string]any
	assert.NoError(t, json.Unmarshal(outcome.Raw, &raw))
	assert.Equal(t, outcome.ErrorCode, raw["errorCode"])
}

func TestSimulator_SuccessRate(t *testing.T) {
	sim := NewMTNMoMo(rand.New(rand.NewSource(7)), 0)

	const draws = 2000
	successes := 0
	for i := 0; i < draws; i++ {
		outcome, err := sim.Submit(context.Background(), testRequest())
		assert.NoError(t, err)
		if outcome.Success {
			successes++
		}
	}
	rate := float64(successes) / draws
	assert.InDelta(t, MTNSuccessRate, rate, 0.05)
}

func TestSimulator_ContextCancelled(t *testing.T) {
	sim := NewMTNMoMo(rand.New(rand.NewSource(1)), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome, err := sim.Submit(ctx, testRequest())
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProviders(t *testing.T) {
	providers := Providers(rand.New(rand.NewSource(1)))

	assert.Len(t, providers, 2)
	assert.Equal(t, "MTN_MOMO", providers[domain.MethodMTNMoMo].Name())
	assert.Equal(t, "AIRTEL_MONEY", providers[domain.MethodAirtelMoney].Name())
}

func TestProviders_IndependentGenerators(t *testing.T) {
	seed := rand.New(rand.NewSource(1))
	providers := Providers(seed)

	mtn := providers[domain.MethodMTNMoMo].(*Simulator)
	airtel := providers[domain.MethodAirtelMoney].(*Simulator)

	// the injected generator must never be shared between simulators
	assert.NotSame(t, seed, mtn.rng)
	assert.NotSame(t, seed, airtel.rng)
	assert.NotSame(t, mtn.rng, airtel.rng)

	// concurrent submissions on both providers must not contend on one rng
	mtn.delay = 0
	airtel.delay = 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, sim := range []*Simulator{mtn, airtel} {
			wg.Add(1)
			go func(sim *Simulator) {
				defer wg.Done()
				_, err := sim.Submit(context.Background(), testRequest())
				assert.NoError(t, err)
			}(sim)
		}
	}
	wg.Wait()
}

func TestProviders_SeededRunsRepeat(t *testing.T) {
	first := Providers(rand.New(rand.NewSource(9)))
	second := Providers(rand.New(rand.NewSource(9)))

	for _, method := range []string{domain.MethodMTNMoMo, domain.MethodAirtelMoney} {
		got := first[method].(*Simulator)
		want := second[method].(*Simulator)
		got.delay = 0
		want.delay = 0

		for i := 0; i < 20; i++ {
			gotOutcome, err := got.Submit(context.Background(), testRequest())
			assert.NoError(t, err)
			wantOutcome, err := want.Submit(context.Background(), testRequest())
			assert.NoError(t, err)
			assert.Equal(t, wantOutcome.Success, gotOutcome.Success)
			assert.Equal(t, wantOutcome.ErrorCode, gotOutcome.ErrorCode)
		}
	}
}
