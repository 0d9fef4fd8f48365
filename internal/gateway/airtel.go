package gateway

import (
	"math/rand"
	"time"

	"github.com/kwachanet/hotspot/internal/domain"
)

const (
	AirtelSuccessRate  = 0.80
	AirtelDefaultDelay = 4 * time.Second
)

// NewAirtelMoney builds the Airtel Money simulator.
func NewAirtelMoney(rng *rand.Rand, delay time.Duration) *Simulator {
	return &Simulator{
		name:        "AIRTEL_MONEY",
		txnPrefix:   "AIRTEL",
		successRate: AirtelSuccessRate,
		delay:       delay,
		rng:         newRNG(rng),
		failures: []failureReason{
			{code: "AM_SUBSCRIBER_NOT_FOUND", message: "The phone number is not an Airtel Money subscriber"},
			{code: "AM_INSUFFICIENT_BALANCE", message: "The subscriber does not have enough funds"},
			{code: "AM_PIN_MISMATCH", message: "The subscriber entered a wrong PIN"},
			{code: "AM_TRANSACTION_TIMEOUT", message: "The subscriber did not confirm in time"},
			{code: "AM_SERVICE_UNAVAILABLE", message: "Airtel Money is temporarily unavailable"},
		},
		buildRaw: func(req Request, txnID string) any {
			return map[string]any{
				"data": map[string]any{
					"transaction": map[string]any{
						"id":              txnID,
						"airtel_money_id": req.Reference,
						"status":          "TS",
						"message":         "Transaction successful",
						"msisdn":          req.PhoneNumber,
						"amount":          req.Amount,
						"currency":        "UGX",
					},
				},
				"status": map[string]any{
					"code":        "200",
					"success":     true,
					"result_code": "ESB000010",
				},
			}
		},
	}
}

// Providers wires each payment method to its simulator with production
// delays. The settlement engine looks providers up by payment method.
// Each simulator owns a generator derived from rng, so concurrent Submit
// calls on different providers never touch the same rand.Rand.
func Providers(rng *rand.Rand) map[string]Provider {
	rng = newRNG(rng)
	return map[string]Provider{
		domain.MethodMTNMoMo:     NewMTNMoMo(rand.New(rand.NewSource(rng.Int63())), MTNDefaultDelay),
		domain.MethodAirtelMoney: NewAirtelMoney(rand.New(rand.NewSource(rng.Int63())), AirtelDefaultDelay),
	}
}
